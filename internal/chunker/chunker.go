// Package chunker splits raw document text into bounded fragments: token
// windows for embedding and character windows for raw full-text storage.
// Windows are contiguous with no overlap and no semantic boundary alignment;
// a chunk may split mid-sentence.
package chunker

const (
	// DefaultMaxTokens bounds embedding chunks to the provider's input limit.
	DefaultMaxTokens = 8191
	// DefaultMaxChars bounds full-text slices to the vector store's per-record
	// metadata payload limit.
	DefaultMaxChars = 30000
)

// ByTokens partitions text into contiguous windows of at most maxTokens
// tokens each and decodes every window back to text. Only the final window
// may be shorter. Empty input yields no chunks. Concatenating the returned
// chunks in order reproduces the original text.
func ByTokens(enc Encoding, text string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if text == "" {
		return nil
	}

	tokens := enc.Encode(text)
	if len(tokens) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(tokens)+maxTokens-1)/maxTokens)
	for start := 0; start < len(tokens); start += maxTokens {
		end := start + maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, enc.Decode(tokens[start:end]))
	}
	return chunks
}

// BySize partitions text into contiguous windows of at most maxChars
// characters with no tokenization. Empty input yields no chunks.
func BySize(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if text == "" {
		return nil
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+maxChars-1)/maxChars)
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
