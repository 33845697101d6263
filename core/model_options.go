package core

// ModelOption describes one selectable AI model.
type ModelOption struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
}

// DefaultModelID is the model every failed request falls back to.
const DefaultModelID = "llama-3-1-80b"

var models = []ModelOption{
	{
		ID:          "deepseek-r1",
		Name:        "Deepseek R1",
		Description: "Powerful multilingual reasoning model",
		Icon:        "/deepseek.png",
	},
	{
		ID:          "gpt-4o-mini",
		Name:        "GPT-4o mini",
		Description: "Fast and efficient model by OpenAI",
		Icon:        "/openai.png",
	},
	{
		ID:          DefaultModelID,
		Name:        "Llama 3.1 80B",
		Description: "Meta's largest open-source model",
		Icon:        "/meta.png",
	},
}

// Models returns the selectable models in display order.
func Models() []ModelOption {
	out := make([]ModelOption, len(models))
	copy(out, models)
	return out
}

// DefaultModel returns the distinguished default model.
func DefaultModel() ModelOption {
	m, _ := LookupModel(DefaultModelID)
	return m
}

// LookupModel finds a model by id.
func LookupModel(id string) (ModelOption, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelOption{}, false
}

// IsDefault reports whether the model is the fallback model.
func (m ModelOption) IsDefault() bool {
	return m.ID == DefaultModelID
}
