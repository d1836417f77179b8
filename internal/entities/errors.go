package entities

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type ErrorKind string

const (
	KindNotFound        ErrorKind = "NotFoundError"
	KindServerError     ErrorKind = "SERVER_ERROR"
	KindInvalidResponse ErrorKind = "INVALID_RESPONSE"
	KindSyncTimeout     ErrorKind = "SYNC_TIMEOUT"
	KindNetworkTimeout  ErrorKind = "NETWORK_TIMEOUT"
	KindNetwork         ErrorKind = "NETWORK_ERROR"
	KindQueueExpired    ErrorKind = "OfflineQueueExpired"
	KindSyncThrottled   ErrorKind = "SYNC_THROTTLED"
	KindStorage         ErrorKind = "STORAGE_ERROR"
	KindInvalidInput    ErrorKind = "INVALID_INPUT"

	httpErrorPrefix = "HTTP_ERROR_"
)

// HTTPErrorKind HTTP_ERROR_<code>.
func HTTPErrorKind(code int) ErrorKind {
	return ErrorKind(httpErrorPrefix + strconv.Itoa(code))
}

func (k ErrorKind) String() string {
	return string(k)
}

// IsHTTP true для любого HTTP_ERROR_<code>.
func (k ErrorKind) IsHTTP() bool {
	return strings.HasPrefix(string(k), httpErrorPrefix)
}

// Error классифицированная ошибка, пересекающая границу репозитория.
// Kind + исходное сообщение достаточно, чтобы слой представления выбрал
// между кнопкой "повторить" и терминальным сообщением.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает по Kind, так что errors.Is(err, ErrNotFound) работает для любых сообщений.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable можно ли предложить пользователю повторить операцию.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNotFound, KindQueueExpired, KindInvalidInput, KindStorage:
		return false
	default:
		return true
	}
}

// Guidance подсказка для пользователя по типичным HTTP кодам.
func (e *Error) Guidance() string {
	switch {
	case e.Kind == KindNotFound:
		return "Посылка не найдена"
	case e.StatusCode == 401:
		return "Требуется повторная авторизация"
	case e.StatusCode == 404:
		return "Сервис временно недоступен"
	case e.StatusCode >= 500:
		return "Временная ошибка сервера, повторите позже"
	case e.Kind == KindSyncTimeout, e.Kind == KindNetworkTimeout:
		return "Превышено время ожидания, проверьте соединение"
	case e.Kind == KindNetwork:
		return "Нет соединения с сервером"
	case e.Kind == KindSyncThrottled:
		return "Синхронизация запрошена слишком часто"
	case e.Kind == KindInvalidResponse:
		return "Некорректный ответ сервера"
	default:
		return e.Message
	}
}

var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrServer          = &Error{Kind: KindServerError}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrSyncTimeout     = &Error{Kind: KindSyncTimeout}
	ErrNetworkTimeout  = &Error{Kind: KindNetworkTimeout}
	ErrNetwork         = &Error{Kind: KindNetwork}
	ErrQueueExpired    = &Error{Kind: KindQueueExpired}
	ErrSyncThrottled   = &Error{Kind: KindSyncThrottled}
	ErrStorage         = &Error{Kind: KindStorage}
	ErrInvalidInput    = &Error{Kind: KindInvalidInput}
)

var (
	ErrMissingPackageID = errors.New("missing package id")
	ErrUnknownPushEvent = errors.New("unknown push event type")
)

func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func NewHTTPError(code int, msg string) *Error {
	return &Error{Kind: HTTPErrorKind(code), StatusCode: code, Message: msg}
}

func NewNotFoundError(id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("package %q not found", id)}
}

// AsError достает классифицированную ошибку из цепочки.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf возвращает Kind или пустую строку для неклассифицированной ошибки.
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}
