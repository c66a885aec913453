package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names.
const (
	// PromptPolicyAnalysis instructs the model to answer a question from
	// policy clauses as a JSON answer record.
	// The template expects {{context}} and {{question}} placeholders.
	PromptPolicyAnalysis = "policy_analysis"

	// PromptPolicySystem is the system instruction sent with PromptPolicyAnalysis.
	// This prompt has no placeholders.
	PromptPolicySystem = "policy_system"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use built-in default prompts.
	SetPromptStore(store PromptStore)
}
