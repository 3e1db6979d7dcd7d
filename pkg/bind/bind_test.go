package bind_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/shashiranjanraj/commandes/pkg/bind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type upload struct {
	name    string
	ctype   string
	content []byte
}

func multipartRequest(t *testing.T, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, f.name))
		h.Set("Content-Type", f.ctype)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestFormMultipart(t *testing.T) {
	req := multipartRequest(t, map[string]string{"nom": "Ben", "total": "1500"},
		upload{name: "a.png", ctype: "image/png", content: pngBytes})

	values, files, err := bind.Form(req, bind.ImageLimits)
	require.NoError(t, err)
	assert.Equal(t, "Ben", values.Get("nom"))
	require.Len(t, files, 1)
	assert.Equal(t, "a.png", files[0].Filename)
	assert.Equal(t, "image/png", files[0].ContentType)

	rc, err := files[0].Open()
	require.NoError(t, err)
	defer rc.Close()
}

func TestFormRejectsSpoofedType(t *testing.T) {
	req := multipartRequest(t, nil, upload{name: "evil.png", ctype: "image/png", content: []byte("#!/bin/sh\necho hi\n")})
	_, _, err := bind.Form(req, bind.ImageLimits)
	assert.ErrorIs(t, err, bind.ErrFileType)
}

func TestFormRejectsDeclaredType(t *testing.T) {
	req := multipartRequest(t, nil, upload{name: "a.pdf", ctype: "application/pdf", content: pngBytes})
	_, _, err := bind.Form(req, bind.ImageLimits)
	assert.ErrorIs(t, err, bind.ErrFileType)
}

func TestFormLimits(t *testing.T) {
	limits := bind.ImageLimits
	limits.MaxFiles = 1
	req := multipartRequest(t, nil,
		upload{name: "a.png", ctype: "image/png", content: pngBytes},
		upload{name: "b.png", ctype: "image/png", content: pngBytes})
	_, _, err := bind.Form(req, limits)
	assert.ErrorIs(t, err, bind.ErrTooManyFiles)

	limits = bind.ImageLimits
	limits.MaxFileSize = 8
	req = multipartRequest(t, nil, upload{name: "a.png", ctype: "image/png", content: pngBytes})
	_, _, err = bind.Form(req, limits)
	assert.ErrorIs(t, err, bind.ErrFileTooLarge)
}

func TestFormJSONAndURLEncoded(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"nom":"Ben","total":12.5,"quantite":2,"obs":null}`))
	req.Header.Set("Content-Type", "application/json")
	values, files, err := bind.Form(req, bind.ImageLimits)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, "12.5", values.Get("total"))
	assert.Equal(t, "2", values.Get("quantite"))
	_, hasObs := values["obs"]
	assert.False(t, hasObs)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader("nom=Ben&wilaya=Oran"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	values, _, err = bind.Form(req, bind.ImageLimits)
	require.NoError(t, err)
	assert.Equal(t, "Oran", values.Get("wilaya"))
}

func TestFormJSONRejectsNested(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nom":{"a":1}}`))
	req.Header.Set("Content-Type", "application/json")
	_, _, err := bind.Form(req, bind.ImageLimits)
	assert.Error(t, err)
}

func TestJSON(t *testing.T) {
	type login struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var in login
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"admin"}`))
	errs, err := bind.JSON(req, &in, 0)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "password", errs[0].Field)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	_, err = bind.JSON(req, &in, 0)
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"`+strings.Repeat("a", 64)+`"}`))
	_, err = bind.JSON(req, &in, 16)
	assert.ErrorIs(t, err, bind.ErrBodyTooLarge)
}

func TestValues(t *testing.T) {
	type form struct {
		Nom   string `form:"nom"`
		Count int    `form:"count"`
		Skip  string
	}
	var f form
	bind.Values(map[string][]string{"nom": {"Ben"}, "count": {"3"}}, &f)
	assert.Equal(t, "Ben", f.Nom)
	assert.Zero(t, f.Count)
}
