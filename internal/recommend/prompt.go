package recommend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const systemPrompt = `You are a product recommendation expert for an e-commerce platform.
Your task is to analyze user queries and recommend the most suitable products from the available inventory.

Each product is provided as a set of key-value pairs (field: value).
Please use all available information to make your recommendations.

Guidelines:
1. Consider the user's specific needs and preferences
2. Match products based on functionality, features, and user intent
3. Consider price sensitivity and value for money
4. Prioritize products that best match the user's query
5. Return only the product IDs (comma-separated) of the most relevant products
6. Limit recommendations to the requested number

Example response format: "1, 5, 12" (product IDs)`

// BuildSystemPrompt returns the fixed instructions sent as the system message.
func BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt embeds the query, the requested count and the serialized
// inventory into the user message.
func BuildUserPrompt(query, productsText string, limit int) string {
	return fmt.Sprintf("User query: \"%s\"\n\n"+
		"Please recommend the top %d most suitable products from the following inventory:\n\n"+
		"%s\n\n"+
		"Return only the product IDs (comma-separated) of the most relevant products:",
		query, limit, productsText)
}

// SerializeProducts renders products as a compact JSON array with non-ASCII
// and HTML characters kept verbatim. It never fails: an empty set, or a set
// that cannot be encoded, renders as "[]".
func SerializeProducts(products []Product) string {
	if len(products) == 0 {
		return "[]"
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(products); err != nil {
		return "[]"
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
