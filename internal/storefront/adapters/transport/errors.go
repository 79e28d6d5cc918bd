package transport

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Kind - вид нормализованной ошибки.
type Kind int

// Виды ошибок транспорта.
const (
	// KindNetwork - запрос не дошел до сервера или ответ не разобран.
	KindNetwork Kind = iota + 1
	// KindServer - ответ не 2xx со структурированным телом.
	KindServer
	// KindAuth - сессия завершена из-за отказа обновления токенов.
	KindAuth
)

// Сообщения, показываемые пользователю.
const (
	MessageNetwork = "Network error"
	MessageUnknown = "Unknown error"
	MessageSession = "Session expired"
)

// ErrSessionTerminated отмечает ошибки, после которых сессия принудительно завершена.
var ErrSessionTerminated = errors.New("session terminated")

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Error - нормализованная ошибка вызова.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s error (status %d): %v", e.Kind, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is позволяет сопоставлять ошибку по виду: errors.Is(err, &Error{Kind: KindServer}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Status == 0 || t.Status == e.Status)
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: MessageNetwork, Err: err}
}

// statusError нормализует ответ не 2xx. Тело JSON дает ошибку сервера с полем message,
// пустое или неразбираемое тело считается сетевой ошибкой.
func statusError(status int, body []byte) *Error {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return &Error{
			Kind:    KindNetwork,
			Status:  status,
			Message: MessageNetwork,
			Body:    body,
			Err:     fmt.Errorf("unparsable response body"),
		}
	}

	message := MessageUnknown
	if m := gjson.GetBytes(body, "message"); m.Type == gjson.String && m.Str != "" {
		message = m.Str
	}
	return &Error{Kind: KindServer, Status: status, Message: message, Body: body}
}

// SessionError оборачивает ошибку запроса, выполненного после принудительного выхода.
func SessionError(err error) *Error {
	status := 0
	var te *Error
	if errors.As(err, &te) {
		status = te.Status
	}
	return &Error{
		Kind:    KindAuth,
		Status:  status,
		Message: MessageSession,
		Err:     errors.Join(ErrSessionTerminated, err),
	}
}

// Message возвращает текст ошибки для пользователя.
func Message(err error) string {
	if err == nil {
		return MessageUnknown
	}

	var te *Error
	if !errors.As(err, &te) {
		return MessageNetwork
	}
	switch te.Kind {
	case KindServer, KindAuth:
		if te.Message == "" {
			return MessageUnknown
		}
		return te.Message
	default:
		return MessageNetwork
	}
}

// IsKind сообщает, является ли err ошибкой транспорта вида kind.
func IsKind(err error, kind Kind) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == kind
}
