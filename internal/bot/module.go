package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// InteractionHandler handles a Discord interaction and returns a response.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is a generic handler for any Discord event.
// It should be a function matching one of discordgo's handler signatures,
// e.g., func(s *discordgo.Session, m *discordgo.MessageCreate)
type EventHandler any

// ModuleDependencies provides dependencies that modules may need during initialization.
type ModuleDependencies struct {
	// Context is cancelled when the bot stops.
	Context context.Context

	Session *discordgo.Session
}

// Module defines the interface that all bot modules must implement.
type Module interface {
	// Name returns the unique identifier for this module.
	Name() string

	// Commands returns the slash commands that this module provides.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers returns a map of command names to their handlers.
	CommandHandlers() map[string]InteractionHandler

	// EventHandlers returns event handlers for this module.
	EventHandlers() []EventHandler

	// Init opens the module's resources. Called after LoadConfig.
	Init(deps ModuleDependencies) error

	// Shutdown releases everything Init opened.
	Shutdown() error
}

// ConfigurableModule is an optional interface for modules that need configuration.
type ConfigurableModule interface {
	// LoadConfig loads and validates module-specific configuration.
	// Called for every module before the Discord session is created, so a
	// misconfigured module fails fast.
	LoadConfig() error
}
