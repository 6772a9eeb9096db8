// Package provider provides the LLM provider abstraction layer for the
// agent runtime.
//
// This package implements a unified interface for Large Language Model
// providers using the Eino framework. It ships with Anthropic Claude and
// OpenAI GPT support; adding a provider means implementing Provider and
// registering it with a Registry.
//
// # Core Components
//
//   - Provider: the interface every LLM backend implements
//   - Registry: holds the configured providers and resolves model lookups
//   - CompletionRequest/CompletionStream: the streaming chat completion API
//   - Tool conversion utilities for function calling
//
// # Supported Providers
//
// ## Anthropic (Claude)
//
//	provider, err := NewAnthropicProvider(ctx, &AnthropicConfig{
//	    ID:        "anthropic",
//	    APIKey:    "sk-...",
//	    Model:     "claude-sonnet-4-5",
//	    MaxTokens: 8192,
//	})
//
// ## OpenAI (GPT)
//
//	provider, err := NewOpenAIProvider(ctx, &OpenAIConfig{
//	    ID:        "openai",
//	    APIKey:    "sk-...",
//	    Model:     "gpt-4o",
//	    MaxTokens: 4096,
//	})
//
// # Registry Usage
//
//	registry, err := InitializeProviders(ctx, config)
//
//	provider, err := registry.Get("anthropic")
//	model, err := registry.GetModel("anthropic", "claude-sonnet-4-5")
//	model, err := registry.DefaultModel()
//	models := registry.AllModels()
//
// # Configuration
//
// InitializeProviders reads a single active provider/model from
// types.Config (LLMModel as "provider/model", LLMAPIKey for credentials),
// then fills in any other well-known provider whose API key is present in
// the environment (ANTHROPIC_API_KEY, OPENAI_API_KEY) so a deployment can
// switch models without restarting.
//
// # Streaming Completions
//
//	stream, err := provider.CreateCompletion(ctx, &CompletionRequest{
//	    Model:     "claude-sonnet-4-5",
//	    Messages:  messages,
//	    Tools:     tools,
//	    MaxTokens: 4096,
//	})
//
//	for {
//	    msg, err := stream.Recv()
//	    if err != nil {
//	        break
//	    }
//	    // Process message chunk
//	}
//	stream.Close()
//
// # Tool Calling
//
//	einoTools := ConvertToEinoTools(tools)
//	einoMessages := ConvertToEinoMessages(messages)
//
// # Integration with Eino
//
// This package is built on top of the Eino framework
// (https://github.com/cloudwego/eino), which provides standardized LLM
// interfaces, built-in tool calling support, streaming, and message schema
// definitions.
package provider
