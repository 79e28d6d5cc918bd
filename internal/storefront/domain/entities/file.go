package entities

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// File - загружаемый файл.
type File struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// EncodedImage - изображение в base64, ответ image-decode.
type EncodedImage struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// DataURL возвращает изображение в виде data URL.
func (i EncodedImage) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MimeType, i.Data)
}

// Encode кодирует файл в base64.
func (f File) Encode() EncodedImage {
	return EncodedImage{
		MimeType: f.MimeType,
		Data:     base64.StdEncoding.EncodeToString(f.Data),
	}
}

// File декодирует изображение в файл с именем name.
func (i EncodedImage) File(name string) (File, error) {
	data, err := base64.StdEncoding.DecodeString(i.Data)
	if err != nil {
		return File{}, fmt.Errorf("decode image: %w", err)
	}
	return File{Name: name, MimeType: i.MimeType, Data: data}, nil
}

// Extension возвращает подтип MIME типа, например png для image/png.
func (i EncodedImage) Extension() string {
	if _, sub, ok := strings.Cut(i.MimeType, "/"); ok {
		return sub
	}
	return i.MimeType
}
