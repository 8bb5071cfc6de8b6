package recommend

// Product is one catalog record. Only the "id" field is interpreted.
type Product = map[string]interface{}

// Request is the immutable input of one recommendation.
type Request struct {
	Query    string
	Limit    int
	Products []Product
}
