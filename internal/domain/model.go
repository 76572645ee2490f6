package domain

const DefaultChatModel = "llama3.1-8b"

type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var modelCatalog = []ModelInfo{
	{ID: "llama3.1-8b", Name: "Llama 3.1 8B", Description: "Fast and efficient"},
	{ID: "llama3.1-70b", Name: "Llama 3.1 70B", Description: "Best for general conversations"},
	{ID: "llama3.1-405b", Name: "Llama 3.1 405B", Description: "Most capable model"},
	{ID: "llama-3.3-70b", Name: "Llama 3.3 70B", Description: "Latest Llama model"},
}

// AvailableModels returns a copy of the static model catalog.
func AvailableModels() []ModelInfo {
	models := make([]ModelInfo, len(modelCatalog))
	copy(models, modelCatalog)
	return models
}

type TestType string

const (
	TestTypeUnit        TestType = "unit"
	TestTypeIntegration TestType = "integration"
	TestTypeSecurity    TestType = "security"
)

func (t TestType) Valid() bool {
	switch t {
	case TestTypeUnit, TestTypeIntegration, TestTypeSecurity:
		return true
	default:
		return false
	}
}
