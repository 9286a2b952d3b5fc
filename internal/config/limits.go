package config

const (
	// MaxNameLength caps category, tag, collection and API key names.
	// Fits PostgreSQL VARCHAR(255).
	MaxNameLength = 255

	// MaxColorLength and MaxIconLength cap display hints on tags and
	// categories.
	MaxColorLength = 32
	MaxIconLength  = 64

	// MaxTitleLength caps prompt titles.
	MaxTitleLength = 255

	// MaxDescriptionLength caps free-text descriptions on prompts,
	// categories and collections.
	MaxDescriptionLength = 2000

	// MaxPromptContentLength caps prompt bodies. Versions store a copy of
	// the content, so this also bounds each version row.
	MaxPromptContentLength = 100_000

	// MaxCommentLength caps comment bodies.
	MaxCommentLength = 10_000

	// MaxTagsPerPrompt caps the tag list accepted on create/update.
	MaxTagsPerPrompt = 50

	// MaxVariablesPerPrompt caps the declared template variables.
	MaxVariablesPerPrompt = 100

	// MaxChangeNoteLength caps caller-supplied version change notes.
	MaxChangeNoteLength = 500

	// RecentVersionsLimit is how many versions a prompt detail view carries.
	RecentVersionsLimit = 10
)
