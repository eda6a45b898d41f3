package httpserver

import (
	stdhttp "net/http"

	"github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

const genericInternalMessage = "internal server error"

// errorBody 是所有错误响应的统一结构。
type errorBody struct {
	Error string `json:"error"`
}

// ErrorEncoder 将 kratos 错误编码为 {"error": "..."}，HTTP 状态取错误码。
// 500 只返回通用文案，原始原因已由服务层记录日志。
func ErrorEncoder(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	se := errors.FromError(err)
	code := int(se.Code)
	if code < 400 || code > 599 {
		code = stdhttp.StatusInternalServerError
	}
	message := se.Message
	if code == stdhttp.StatusInternalServerError || message == "" {
		message = genericInternalMessage
		if code != stdhttp.StatusInternalServerError {
			message = stdhttp.StatusText(code)
		}
	}
	writeError(w, r, code, message)
}

func writeError(w stdhttp.ResponseWriter, r *stdhttp.Request, code int, message string) {
	codec, _ := khttp.CodecForRequest(r, "Accept")
	body, err := codec.Marshal(&errorBody{Error: message})
	if err != nil {
		w.WriteHeader(stdhttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/"+codec.Name())
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func notFound(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	writeError(w, r, stdhttp.StatusNotFound, "route not found")
}

func methodNotAllowed(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	writeError(w, r, stdhttp.StatusMethodNotAllowed, "method not allowed")
}
