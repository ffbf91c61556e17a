// Package gemini implements the ai.Provider and ai.StreamProvider interfaces
// for Google's Gemini generateContent API.
//
// Gemini's wire format differs from the OpenAI/Anthropic families in a few
// ways this package has to paper over: messages are "contents" with a parts
// array, the assistant role is called "model", system prompts live in a
// top-level systemInstruction field, all function declarations are grouped
// into a single tool entry, and the wire never carries tool-call ids, so the
// converter synthesizes them.
package gemini
