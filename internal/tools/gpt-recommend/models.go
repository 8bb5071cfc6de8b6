// internal/tools/gpt-recommend/models.go
package gptrecommend

import "github.com/AI-Web3-Studio/mcp-product-suggester/internal/recommend"

type Input struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type Output []recommend.Product
