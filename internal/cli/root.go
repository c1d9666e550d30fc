// Package cli implements the goalspace CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goalspace/goalspace/internal/app"
	"github.com/goalspace/goalspace/internal/chat"
	"github.com/goalspace/goalspace/internal/config"
	"github.com/goalspace/goalspace/internal/embedding"
	"github.com/goalspace/goalspace/internal/llm"
	"github.com/goalspace/goalspace/internal/mentor"
	"github.com/goalspace/goalspace/internal/state"
	"github.com/goalspace/goalspace/internal/store"
	"github.com/goalspace/goalspace/internal/vector"
)

var (
	cfgPath  string
	dbPath   string
	userFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "goalspace",
	Short: "Goal tracking with an AI mentor",
	Long:  "Track goals, break them into mentor-guided learning spaces, and generate plans, research, and mind maps. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path (default: ~/.goalspace/config.json)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $GOALSPACE_DB or ~/.goalspace/goalspace.db)")
	RootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User id (default: $GOALSPACE_USER or 'local')")
}

// openApp wires the store, snapshot, and optional generation collaborators
// from configuration.
func openApp() (*app.App, error) {
	var cfg *config.Config
	var err error
	if cfgPath != "" {
		cfg, err = config.LoadFrom(cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if userFlag != "" {
		cfg.UserID = userFlag
	}

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	snap, err := state.Open(cfg.StatePath, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	catalog, err := mentor.LoadCatalog(cfg.MentorCatalog)
	if err != nil {
		st.Close()
		return nil, err
	}

	a := &app.App{
		Store:   st,
		State:   snap,
		Gen:     newGenerator(cfg),
		Catalog: catalog,
		Cfg:     cfg,
	}

	if emb := newEmbedder(cfg); emb != nil {
		ix, err := vector.NewIndex(cfg.VectorDir, emb, nil)
		if err != nil {
			st.Close()
			return nil, err
		}
		a.Index = ix
	}

	return a, nil
}

func newGenerator(cfg *config.Config) llm.Generator {
	if cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
		return nil
	}
	return llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.GenerateTimeout())
}

func newEmbedder(cfg *config.Config) embedding.Embedder {
	switch cfg.Embedding.Provider {
	case "ollama":
		model := cfg.Embedding.Model
		if model == "" {
			model = "nomic-embed-text"
		}
		return embedding.NewOllamaEmbedder(model)
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.BaseURL, cfg.LLM.APIKey, cfg.Embedding.Model, 0)
	default:
		return nil
	}
}

func newSessionManager(a *app.App) *chat.Manager {
	slot := chat.NewHandoffSlot(a.Cfg.HandoffPath)
	return chat.NewManager(a.Store, a.State, a.Gen, slot, llm.Options{
		Model:       a.Cfg.LLM.Model,
		Temperature: a.Cfg.LLM.Temperature,
		MaxTokens:   a.Cfg.LLM.MaxTokens,
	})
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
