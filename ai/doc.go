// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the AI services used in trialmatch.
//
// This package defines interfaces for text embeddings, text completion and
// biomedical named entity recognition. The matching pipeline depends on these
// abstractions rather than on concrete model clients.
//
// # Design Principles
//
// The package is designed around four interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Completer: Generates text from an instruction prompt
//   - EntityExtractor: Finds biomedical entities in clinical text
//   - AIProvider: Aggregates the services for initialization and lifecycle
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs via langchaingo (local Ollama, vLLM)
//   - ai/hfinference: Hugging Face Inference API (feature-extraction,
//     text-generation, token-classification)
//   - ai/gemini: Google Gemini API via google.golang.org/genai
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, hfinference.NewEmbedder, etc.) return
// INTERFACE types to prevent accidental coupling to concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockCompleter)
// return CONCRETE types to enable test assertions and behavior injection via
// the mock's public methods (CallCount, WithXFunc, Reset, etc.).
//
// # Feature Tensors
//
// Feature-extraction endpoints may return token-level tensors. MeanPool reduces
// rank-2 and rank-3 payloads to a single vector before use.
package ai
