package functions

import (
	"context"
	"encoding/json"
	"net/http"
)

// Hello ignores its event and always greets.
func Hello(ctx context.Context, event json.RawMessage) (Response, error) {
	return respond(http.StatusOK, messageBody{Message: "Hello World!"}), nil
}
