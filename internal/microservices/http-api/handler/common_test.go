package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

func TestTranslateBindError_FieldNamesFollowJSON(t *testing.T) {
	req := dto.CreateCategoryRequest{Name: "Film", Slug: "bad slug!"}
	err := binding.Validator.ValidateStruct(req)
	require.Error(t, err)

	ae := apperr.As(translateBindError(err))
	assert.Equal(t, apperr.CodeValidation, ae.Code)
	msg, ok := ae.Field("slug")
	assert.True(t, ok)
	assert.Contains(t, msg, "slug")
}

func TestTranslateBindError_DecodeFailures(t *testing.T) {
	var target dto.CreateReviewRequest

	err := json.Unmarshal([]byte(`{"text":"x","score":"ten"}`), &target)
	ae := apperr.As(translateBindError(err))
	_, ok := ae.Field("score")
	assert.True(t, ok)

	err = json.Unmarshal([]byte(`{"text":`), &target)
	assert.Equal(t, apperr.CodeValidation, apperr.As(translateBindError(err)).Code)

	ae = apperr.As(translateBindError(io.EOF))
	assert.Equal(t, "request body is required", ae.Message)

	ae = apperr.As(translateBindError(errors.New("boom")))
	assert.Equal(t, apperr.KindValidation, ae.Kind)
}

func TestUsernameValidatorRejectsMe(t *testing.T) {
	for _, name := range []string{"me", "ME", "bad name"} {
		err := binding.Validator.ValidateStruct(dto.SignupRequest{Username: name, Email: "a@b.co"})
		assert.Error(t, err, name)
	}
	assert.NoError(t, binding.Validator.ValidateStruct(dto.SignupRequest{Username: "mel.o+1", Email: "a@b.co"}))
}

func TestPathID(t *testing.T) {
	r := gin.New()
	r.GET("/titles/:title_id", func(c *gin.Context) {
		id, ok := pathID(c, nil, "title_id", "title")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	for path, want := range map[string]int{
		"/titles/12": http.StatusOK,
		"/titles/0":  http.StatusNotFound,
		"/titles/-3": http.StatusNotFound,
		"/titles/x1": http.StatusNotFound,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
		if want == http.StatusNotFound {
			assert.True(t, strings.Contains(w.Body.String(), "title not found"), path)
		}
	}
}

func TestPageOf(t *testing.T) {
	page, size := pageOf(dto.PageQuery{})
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = pageOf(dto.PageQuery{Page: 3, PageSize: 5})
	assert.Equal(t, 3, page)
	assert.Equal(t, 5, size)
}
