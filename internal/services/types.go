package services

// TextRequest carries the inputs for a text generation call.
type TextRequest struct {
	Prompt        string
	SystemMessage string
	MaxTokens     int
	Temperature   float64
}

// TextResult is the structured payload returned by a text adapter.
type TextResult struct {
	Content string
}

// ImageRequest carries the inputs for an image generation call. Platform is a
// hint (e.g. "instagram", "facebook") adapters may translate into dimensions.
type ImageRequest struct {
	Prompt         string
	Platform       string
	NegativePrompt string
	Style          string
}

// ImageResult is the structured payload returned by an image adapter. Adapters
// return base64 content when the vendor inlines the image, or a URL reference
// otherwise; at least one of the two is set on success.
type ImageResult struct {
	ImageB64 string
	URL      string
}
