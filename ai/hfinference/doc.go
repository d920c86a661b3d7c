// Package hfinference provides AI service implementations backed by the
// Hugging Face Inference API.
//
// Three pipeline tasks are used, each against its own model:
//
//   - feature-extraction for embeddings (token tensors are mean-pooled)
//   - text-generation for criteria parsing (greedy, prompt not echoed)
//   - token-classification for biomedical named entities
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithBackend(ai.BackendHuggingFace),
//	    ai.WithAPIKey(os.Getenv("HF_TOKEN")),
//	)
//	provider, err := hfinference.NewProvider(config)
package hfinference
