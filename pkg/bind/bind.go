// Package bind decodes an HTTP request body into a struct or into a set of
// form values plus validated uploaded files.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/commandes/pkg/validate"
)

// DefaultMaxBodyBytes caps JSON bodies when the caller passes no limit.
const DefaultMaxBodyBytes int64 = 4 << 20

var (
	ErrTooManyFiles = errors.New("bind: too many files")
	ErrFileTooLarge = errors.New("bind: file too large")
	ErrFileType     = errors.New("bind: file type not allowed")
	ErrBodyTooLarge = errors.New("bind: request body too large")
)

// JSON decodes r.Body as JSON into dest and runs validation.
// Returns (errs, nil) when there are validation failures.
// Returns (nil, err) when the body is malformed JSON or too large.
func JSON(r *http.Request, dest interface{}, maxBytes int64) (errs []validate.FieldError, err error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	if err = json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w (max %d bytes)", ErrBodyTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	return validate.Check(dest), nil
}

// UploadLimits bounds the files accepted by Form.
type UploadLimits struct {
	Field        string
	MaxFiles     int
	MaxFileSize  int64
	AllowedTypes []string
}

// ImageLimits accepts up to ten JPEG, PNG or GIF pictures of 5 MB each
// under the "images" field.
var ImageLimits = UploadLimits{
	Field:        "images",
	MaxFiles:     10,
	MaxFileSize:  5 << 20,
	AllowedTypes: []string{"image/jpeg", "image/jpg", "image/png", "image/gif"},
}

// File is one validated upload. Open may be called any number of times.
type File struct {
	Filename    string
	ContentType string
	Size        int64

	header *multipart.FileHeader
}

func (f File) Open() (multipart.File, error) { return f.header.Open() }

// Form reads the request body as multipart/form-data, urlencoded form or
// JSON object and returns its scalar fields. Files under limits.Field are
// validated as a batch before any is returned, so callers never persist a
// partial upload.
func Form(r *http.Request, limits UploadLimits) (url.Values, []File, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		budget := int64(limits.MaxFiles)*limits.MaxFileSize + DefaultMaxBodyBytes
		r.Body = http.MaxBytesReader(nil, r.Body, budget)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, nil, ErrBodyTooLarge
			}
			return nil, nil, fmt.Errorf("invalid multipart body: %w", err)
		}
		files, err := collectFiles(r.MultipartForm, limits)
		if err != nil {
			return nil, nil, err
		}
		return url.Values(r.MultipartForm.Value), files, nil

	case "application/json":
		values, err := jsonValues(r)
		return values, nil, err

	default:
		r.Body = http.MaxBytesReader(nil, r.Body, DefaultMaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return nil, nil, fmt.Errorf("invalid form body: %w", err)
		}
		return r.PostForm, nil, nil
	}
}

func collectFiles(form *multipart.Form, limits UploadLimits) ([]File, error) {
	headers := form.File[limits.Field]
	if limits.MaxFiles > 0 && len(headers) > limits.MaxFiles {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFiles, len(headers), limits.MaxFiles)
	}

	files := make([]File, 0, len(headers))
	for _, fh := range headers {
		if limits.MaxFileSize > 0 && fh.Size > limits.MaxFileSize {
			return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, fh.Filename)
		}

		declared, _, _ := mime.ParseMediaType(fh.Header.Get("Content-Type"))
		sniffed, err := sniff(fh)
		if err != nil {
			return nil, err
		}
		if !allowed(declared, limits.AllowedTypes) || !allowed(sniffed, limits.AllowedTypes) {
			return nil, fmt.Errorf("%w: %s", ErrFileType, fh.Filename)
		}

		files = append(files, File{
			Filename:    fh.Filename,
			ContentType: sniffed,
			Size:        fh.Size,
			header:      fh,
		})
	}
	return files, nil
}

func sniff(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("bind: open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("bind: read %s: %w", fh.Filename, err)
	}
	ct, _, _ := mime.ParseMediaType(http.DetectContentType(buf[:n]))
	return ct, nil
}

func allowed(ct string, types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if strings.EqualFold(ct, t) {
			return true
		}
	}
	return false
}

// jsonValues flattens a JSON object into form values so both encodings
// share one validation path.
func jsonValues(r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, DefaultMaxBodyBytes)

	var raw map[string]interface{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	values := url.Values{}
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			values.Set(k, val)
		case json.Number:
			values.Set(k, val.String())
		case bool:
			values.Set(k, strconv.FormatBool(val))
		default:
			return nil, fmt.Errorf("invalid JSON: field %q must be a scalar", k)
		}
	}
	return values, nil
}

// Values copies form values into the string fields of dest whose `form`
// tag names them. Missing keys leave the field empty.
func Values(values url.Values, dest interface{}) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := f.Tag.Get("form")
		if name == "" || f.Type.Kind() != reflect.String {
			continue
		}
		rv.Field(i).SetString(values.Get(name))
	}
}
