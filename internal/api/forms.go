package api

import (
	"accounts/internal/service"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// 表单字段
const (
	fieldSurnom      = "surnom"
	fieldEmail       = "email"
	fieldMotDePasse  = "motDePasse"
	fieldGradeID     = "gradeId"
	fieldRemoveImage = "removeImage"
)

// multipart overhead allowed on top of the file size limit
const formOverheadBytes = 1 << 20

var (
	registerFields = fieldSet(fieldSurnom, fieldEmail, fieldMotDePasse, fieldGradeID)
	updateFields   = fieldSet(fieldSurnom, fieldEmail, fieldMotDePasse, fieldRemoveImage)
	// the web client sends "image", API clients may send "file"
	avatarFields = fieldSet("file", "image")
)

func fieldSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// formError is a request-shape failure detected before the service is called.
type formError struct {
	status  int
	code    string
	message string
	field   string
}

func (e *formError) Error() string {
	return e.message
}

func writeFormError(c *gin.Context, err error) {
	var fe *formError
	if !errors.As(err, &fe) {
		InvalidPayload(c)
		return
	}
	if fe.field != "" {
		ErrorResponseWithDetails(c, fe.status, fe.code, fe.message, gin.H{"field": fe.field})
		return
	}
	ErrorResponse(c, fe.status, fe.code, fe.message)
}

func unknownFieldError(field string) error {
	return &formError{status: http.StatusBadRequest, code: ErrCodeUnknownField, message: "Unknown field " + field, field: field}
}

func invalidFieldError(field string) error {
	return &formError{status: http.StatusBadRequest, code: ErrCodeInvalidRequest, message: "Invalid " + field, field: field}
}

func (h *HTTPHandler) tooLargeError() error {
	return &formError{
		status:  http.StatusRequestEntityTooLarge,
		code:    ErrCodePayloadTooLarge,
		message: fmt.Sprintf("File exceeds the %d byte limit", h.uploadLimit),
	}
}

// multipartPayload holds the first value of every form field and the optional avatar.
type multipartPayload struct {
	values map[string]string
	avatar *service.AvatarUpload
}

func (p *multipartPayload) optional(field string) *string {
	value, ok := p.values[field]
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// readMultipart parses a multipart body, rejecting fields outside allowed and
// more than one avatar file.
func (h *HTTPHandler) readMultipart(c *gin.Context, allowed map[string]struct{}) (*multipartPayload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadLimit+formOverheadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, h.tooLargeError()
		}
		return nil, &formError{status: http.StatusBadRequest, code: ErrCodeInvalidRequest, message: "Invalid multipart payload"}
	}
	defer form.RemoveAll()

	payload := &multipartPayload{values: make(map[string]string, len(form.Value))}
	for name, values := range form.Value {
		if _, ok := allowed[name]; !ok {
			return nil, unknownFieldError(name)
		}
		if len(values) > 0 {
			payload.values[name] = values[0]
		}
	}

	var fileHeader *multipart.FileHeader
	for name, files := range form.File {
		if _, ok := avatarFields[name]; !ok {
			return nil, unknownFieldError(name)
		}
		for _, fh := range files {
			if fileHeader != nil {
				return nil, invalidFieldError(name)
			}
			fileHeader = fh
		}
	}
	if fileHeader == nil {
		return payload, nil
	}

	avatar, err := h.readAvatar(fileHeader)
	if err != nil {
		return nil, err
	}
	payload.avatar = avatar
	return payload, nil
}

func (h *HTTPHandler) readAvatar(fh *multipart.FileHeader) (*service.AvatarUpload, error) {
	if fh.Size > h.uploadLimit {
		return nil, h.tooLargeError()
	}
	file, err := fh.Open()
	if err != nil {
		return nil, invalidFieldError("file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.uploadLimit+1))
	if err != nil {
		return nil, invalidFieldError("file")
	}
	if int64(len(data)) > h.uploadLimit {
		return nil, h.tooLargeError()
	}
	return &service.AvatarUpload{Filename: fh.Filename, Data: data}, nil
}

// decodeJSON decodes a JSON object into dst and rejects unknown fields.
func decodeJSON(c *gin.Context, dst any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, formOverheadBytes))
	if err != nil {
		return &formError{status: http.StatusBadRequest, code: ErrCodeInvalidRequest, message: "Invalid request payload"}
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return unknownFieldError(strings.Trim(field, `"`))
		}
		return &formError{status: http.StatusBadRequest, code: ErrCodeInvalidRequest, message: "Invalid request payload"}
	}
	return nil
}
