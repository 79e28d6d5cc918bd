package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// Body - тело запроса.
type Body interface {
	ContentType() string
	Encode() (io.Reader, error)
}

// Request - относительный запрос к бэкенду.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   Body
}

// Clone возвращает копию запроса с независимыми заголовками.
func (r *Request) Clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = http.Header{}
	}
	return &c
}

// Response - успешный ответ.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

type jsonBody struct {
	value any
}

// JSONBody кодирует v в JSON.
func JSONBody(v any) Body {
	return jsonBody{value: v}
}

func (b jsonBody) ContentType() string {
	return "application/json"
}

func (b jsonBody) Encode() (io.Reader, error) {
	data, err := json.Marshal(b.value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json body: %w", err)
	}
	return bytes.NewReader(data), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type formFile struct {
	field    string
	name     string
	mimeType string
	data     []byte
}

type formPart struct {
	field string
	value string
	file  *formFile
}

// Form собирает multipart/form-data. Порядок полей сохраняется.
type Form struct {
	parts    []formPart
	boundary string
}

// NewForm создает пустую форму.
func NewForm() *Form {
	return &Form{}
}

// Add добавляет текстовое поле. Повторный вызов с тем же именем добавляет еще одно значение.
func (f *Form) Add(field, value string) *Form {
	f.parts = append(f.parts, formPart{field: field, value: value})
	return f
}

// AddInt добавляет целочисленное поле.
func (f *Form) AddInt(field string, value int) *Form {
	return f.Add(field, strconv.Itoa(value))
}

// AddFile добавляет файл.
func (f *Form) AddFile(field, name, mimeType string, data []byte) *Form {
	f.parts = append(f.parts, formPart{
		field: field,
		file:  &formFile{field: field, name: name, mimeType: mimeType, data: data},
	})
	return f
}

// Fields возвращает значения текстового поля.
func (f *Form) Fields(field string) []string {
	var out []string
	for _, p := range f.parts {
		if p.file == nil && p.field == field {
			out = append(out, p.value)
		}
	}
	return out
}

// Files возвращает имена файлов поля.
func (f *Form) Files(field string) []string {
	var out []string
	for _, p := range f.parts {
		if p.file != nil && p.field == field {
			out = append(out, p.file.name)
		}
	}
	return out
}

func (f *Form) ContentType() string {
	return "multipart/form-data; boundary=" + f.ensureBoundary()
}

func (f *Form) Encode() (io.Reader, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := w.SetBoundary(f.ensureBoundary()); err != nil {
		return nil, fmt.Errorf("failed to set form boundary: %w", err)
	}

	for _, p := range f.parts {
		if p.file == nil {
			if err := w.WriteField(p.field, p.value); err != nil {
				return nil, fmt.Errorf("failed to write form field %s: %w", p.field, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(p.file.field), quoteEscaper.Replace(p.file.name)))
		mimeType := p.file.mimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		h.Set("Content-Type", mimeType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file %s: %w", p.file.name, err)
		}
		if _, err := part.Write(p.file.data); err != nil {
			return nil, fmt.Errorf("failed to write form file %s: %w", p.file.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}
	return buf, nil
}

func (f *Form) ensureBoundary() string {
	if f.boundary == "" {
		f.boundary = multipart.NewWriter(io.Discard).Boundary()
	}
	return f.boundary
}
