package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-playground/form"
)

var errInvalidBody = errors.New("invalid request body")

var formDecoder = form.NewDecoder()

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

// bind decodes a JSON, urlencoded or already parsed multipart body into dst.
// An empty body leaves dst untouched.
func bind(r *http.Request, dst any) error {
	switch mediaType(r) {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return errInvalidBody
		}
		return nil
	case "multipart/form-data":
		if r.MultipartForm == nil {
			if err := r.ParseMultipartForm(multipartMemory); err != nil {
				return errInvalidBody
			}
		}
		if err := formDecoder.Decode(dst, r.PostForm); err != nil {
			return errInvalidBody
		}
		return nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return errInvalidBody
		}
		if err := formDecoder.Decode(dst, r.PostForm); err != nil {
			return errInvalidBody
		}
		return nil
	default:
		return nil
	}
}
