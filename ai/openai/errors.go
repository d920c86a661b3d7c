package openai

import "errors"

// ErrEmptyEmbedding indicates the service returned no vector for a text.
var ErrEmptyEmbedding = errors.New("empty embedding")
