// Package cli implements the gedcart CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/gedcart/internal/cart"
	"github.com/rcliao/gedcart/internal/config"
	"github.com/rcliao/gedcart/internal/graph"
	"github.com/rcliao/gedcart/internal/logging"
	"github.com/rcliao/gedcart/internal/model"
	"github.com/rcliao/gedcart/internal/store"
)

var (
	configPath string
	dbPath     string
	treeFlag   string
	roleFlag   string
	sessionID  string
	gedcomPath string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "gedcart",
	Short: "Clippings cart for genealogy trees",
	Long:  "Collect records from a GEDCOM tree into a cart by closure rules, then export them as a self-contained GEDCOM archive.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $GEDCART_CONFIG or ~/.gedcart/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $GEDCART_DB or ~/.gedcart/gedcart.db)")
	RootCmd.PersistentFlags().StringVarP(&treeFlag, "tree", "t", "", "Tree name")
	RootCmd.PersistentFlags().StringVar(&roleFlag, "role", "", "Viewer role: admin, manager, member or visitor")
	RootCmd.PersistentFlags().StringVar(&sessionID, "session", "", "Session id (default: the last session used)")
	RootCmd.PersistentFlags().StringVar(&gedcomPath, "gedcom", "", "Read the tree from a GEDCOM file instead of the configured graph")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.DB = dbPath
	}
	if treeFlag != "" {
		cfg.Tree = treeFlag
	}
	if roleFlag != "" {
		if !model.ValidRoles[model.Role(roleFlag)] {
			return cfg, fmt.Errorf("unknown role %q", roleFlag)
		}
		cfg.Viewer.Role = roleFlag
	}
	return cfg, nil
}

func openStore(cfg config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DB)
}

// env is what most commands need: the configured tree, its graph and the
// current session's cart.
type env struct {
	cfg    config.Config
	store  *store.SQLiteStore
	graph  graph.Graph
	cart   *cart.Cart
	logger *zap.Logger
}

func (e *env) role() model.Role {
	return model.Role(e.cfg.Viewer.Role)
}

func (e *env) classify(ctx context.Context, id string) (model.RecordKind, error) {
	return e.graph.KindOf(ctx, id)
}

func (e *env) Close() {
	e.graph.Close()
	e.store.Close()
	e.logger.Sync()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	s, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	g, err := openGraph(ctx, cfg, s)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open graph: %w", err)
	}
	session, err := currentSession(s)
	if err != nil {
		g.Close()
		s.Close()
		return nil, err
	}
	logger = logger.With(zap.String("tree", cfg.Tree), zap.String("session", session.ID()))
	return &env{cfg: cfg, store: s, graph: g, cart: cart.New(session), logger: logger}, nil
}

func openGraph(ctx context.Context, cfg config.Config, s *store.SQLiteStore) (graph.Graph, error) {
	if gedcomPath != "" {
		f, err := os.Open(gedcomPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return graph.LoadMemory(f)
	}
	if cfg.Graph.Backend == "neo4j" {
		return graph.NewNeo4j(ctx, cfg.Graph.Neo4j, cfg.Tree)
	}
	return s.Graph(cfg.Tree), nil
}

// currentSession returns the session named by --session, or the one whose
// id was saved next to the database.
func currentSession(s *store.SQLiteStore) (*store.SQLiteSession, error) {
	if sessionID != "" {
		return s.Session(sessionID), nil
	}
	return s.LastSession()
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
