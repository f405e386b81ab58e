package anthropic

// BuildCachedSystemBlocks puts text in a single system block with a cache
// breakpoint. Callers that send many requests sharing a long preamble (the
// capability catalog, for example) pay full input price only on the first.
// An empty ttl uses the API's five-minute default.
func BuildCachedSystemBlocks(text, ttl string) []SystemBlock {
	if text == "" {
		return nil
	}
	return []SystemBlock{
		{
			Text:         text,
			CacheControl: &CacheControl{TTL: ttl},
		},
	}
}
