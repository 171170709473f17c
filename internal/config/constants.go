package config

const (
	// DefaultSessionDatabasePath is where SESSION_STORE=sqlite keeps session blobs
	DefaultSessionDatabasePath = "./storybook-sessions.db"

	// DefaultPromptModel writes illustration descriptions
	DefaultPromptModel = "gemini-2.0-flash"

	// DefaultImageModel renders illustrations
	DefaultImageModel = "gemini-2.0-flash-preview-image-generation"
)
