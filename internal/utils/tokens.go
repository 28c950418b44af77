package utils

// EstimateTokens approximates a token count as characters/4, rounded up.
// It is only used for the usage block of chat-completion responses.
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}
