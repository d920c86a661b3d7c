package criteria

import "errors"

// ErrCompleterRequired is returned when a completer is not provided.
var ErrCompleterRequired = errors.New("completer required")
