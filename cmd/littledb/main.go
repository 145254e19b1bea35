package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/liliang-cn/littledb/pkg/codec"
	"github.com/liliang-cn/littledb/pkg/kv"
	"github.com/liliang-cn/littledb/pkg/littledb"
)

var (
	dbPath     string
	format     string
	collection string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "littledb",
	Short: "CLI tool for SQLite key-value document storage",
	Long:  `A command-line interface for managing structured documents in a SQLite-backed key-value store.`,
}

// textCodec renders and parses document values on the command line. The
// structured-text format doubles as the CLI's human-readable syntax, so
// tagged dates and date-times work from the shell.
var textCodec = codec.NewJSON(nil)

var setCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Store a document or scalar under a key",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		var input []byte
		if len(args) == 2 {
			input = []byte(args[1])
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read value from stdin: %w", err)
			}
			input = data
		}

		value, err := textCodec.Decode(input)
		if err != nil {
			return fmt.Errorf("invalid value: %w", err)
		}

		db, sess, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		coll, err := db.Collection(ctx, sess, collection, format)
		if err != nil {
			return err
		}

		if err := coll.Set(ctx, sess, key, value); err != nil {
			return err
		}

		fmt.Printf("Key '%s' stored in collection '%s'\n", key, collection)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add [value]",
	Short: "Store a document under a generated key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := uuid.New().String()
		setArgs := append([]string{key}, args...)
		if err := setCmd.RunE(cmd, setArgs); err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get the value stored under a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		db, sess, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		coll, err := db.Collection(ctx, sess, collection, format)
		if err != nil {
			return err
		}

		value, err := coll.Get(ctx, sess, key)
		if err != nil {
			return err
		}

		out, err := textCodec.Encode(value)
		if err != nil {
			return fmt.Errorf("failed to render value: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List all keys in a collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, sess, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		coll, err := db.Collection(ctx, sess, collection, format)
		if err != nil {
			return err
		}

		for key, err := range coll.Keys(ctx, sess) {
			if err != nil {
				return err
			}
			fmt.Println(key)
		}
		return nil
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List registered serialization formats",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range codec.Default().Formats() {
			fmt.Println(name)
		}
		return nil
	},
}

var (
	serveAddr  string
	serveQuiet bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the demo HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintln(w, `{"msg": "Hello world!"}`)
		})

		var handler http.Handler = mux
		if !serveQuiet {
			handler = requestLogger(mux)
		}

		log.Printf("Serving on %s", serveAddr)
		return http.ListenAndServe(serveAddr, handler)
	},
}

// requestLogger logs one line per request; omitted entirely in quiet mode
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s %s", r.RemoteAddr, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// openDB opens the configured database with a session for this invocation
func openDB() (*littledb.DB, *kv.Session, error) {
	config := littledb.DefaultConfig(dbPath)
	if verbose {
		config.Logger = kv.NewStdLogger(kv.LevelDebug)
	}

	db, err := littledb.Open(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, db.NewSession(), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "littledb.db", "Database file path")
	rootCmd.PersistentFlags().StringVar(&format, "format", littledb.DefaultFormat, "Serialization format")
	rootCmd.PersistentFlags().StringVar(&collection, "collection", "documents", "Collection name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Be verbose")

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().BoolVar(&serveQuiet, "quiet", false, "Suppress per-request logging")

	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
