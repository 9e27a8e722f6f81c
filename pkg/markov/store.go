package markov

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const (
	// SOCTokenID is the reserved vocabulary ID for the Start-Of-Chain token.
	SOCTokenID = 0
	// EOCTokenID is the reserved vocabulary ID for the End-Of-Chain token.
	EOCTokenID = 1
)

// ErrModelNotFound is returned when a named model does not exist in the store.
var ErrModelNotFound = errors.New("markov: model not found")

// ModelInfo holds the essential metadata for a stored model, including its
// unique ID, name, and order.
type ModelInfo struct {
	Id    int
	Name  string
	Order int
}

// SetupSchema initializes the necessary tables and special vocabulary entries
// in the provided database. This function should be called once on a new
// database before any other operations are performed. It is idempotent and
// safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaVocab = `
CREATE TABLE IF NOT EXISTS markov_vocabulary (
    token_id INTEGER PRIMARY KEY,
    token_text TEXT NOT NULL UNIQUE
);
`
		schemaPrefixes = `
CREATE TABLE IF NOT EXISTS markov_prefixes (
	prefix_id INTEGER PRIMARY KEY,
	prefix_text TEXT NOT NULL UNIQUE
);
`
		schemaModels = `
CREATE TABLE IF NOT EXISTS markov_models (
    model_id INTEGER PRIMARY KEY,
    model_name TEXT NOT NULL UNIQUE,
    model_order INTEGER NOT NULL
);
`
		schemaChains = `
CREATE TABLE IF NOT EXISTS markov_chains (
    model_id INTEGER NOT NULL,
    prefix_id INTEGER NOT NULL,
    next_token_id INTEGER NOT NULL,
    frequency  INTEGER NOT NULL DEFAULT 1,
    seq INTEGER NOT NULL,
    PRIMARY KEY (model_id, prefix_id, next_token_id)
);
`
		schemaStarts = `
CREATE TABLE IF NOT EXISTS markov_starts (
    model_id INTEGER NOT NULL,
    prefix_id INTEGER NOT NULL,
    frequency INTEGER NOT NULL DEFAULT 1,
    seq INTEGER NOT NULL,
    PRIMARY KEY (model_id, prefix_id)
);
`
	)

	startToken := fmt.Sprintf("INSERT OR IGNORE INTO markov_vocabulary (token_id, token_text) VALUES (%d, '%s');", SOCTokenID, SOCTokenText)
	endToken := fmt.Sprintf("INSERT OR IGNORE INTO markov_vocabulary (token_id, token_text) VALUES (%d, '%s');", EOCTokenID, EOCTokenText)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing. If it fails, this will clean up.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	for _, stmt := range []string{schemaVocab, schemaPrefixes, schemaModels, schemaChains, schemaStarts} {
		if _, err = tx.Exec(stmt); err != nil {
			return fmt.Errorf("could not create schema: %w", err)
		}
	}

	if _, err = tx.Exec(startToken); err != nil {
		return fmt.Errorf("could not insert special tokens: %w", err)
	}

	if _, err = tx.Exec(endToken); err != nil {
		return fmt.Errorf("could not insert special tokens: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Store persists fitted models in a SQLite database so that a corpus does not
// need to be refitted on every run. It holds the database connection and
// prepared SQL statements for efficient database interaction.
type Store struct {
	db                    *sql.DB
	stmtGetModelInfo      *sql.Stmt
	stmtGetModels         *sql.Stmt
	stmtGetChains         *sql.Stmt
	stmtGetStarts         *sql.Stmt
	stmtPruneModel        *sql.Stmt
	stmtInsertVocab       *sql.Stmt
	stmtGetOrInsertPrefix *sql.Stmt
	logger                *slog.Logger
}

// NewStore creates and returns a new Store. The schema must already exist
// (see SetupSchema). It pre-compiles all necessary SQL statements, returning
// an error if any preparation fails.
func NewStore(db *sql.DB) (*Store, error) {
	stmtGetModelInfo, err := db.Prepare(`SELECT model_id, model_order FROM markov_models WHERE model_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetModels, err := db.Prepare(`SELECT model_id, model_name, model_order FROM markov_models;`)
	if err != nil {
		return nil, err
	}

	stmtGetChains, err := db.Prepare(`
		SELECT p.prefix_text, v.token_text, c.frequency FROM markov_chains c
		JOIN markov_prefixes p ON p.prefix_id = c.prefix_id
		JOIN markov_vocabulary v ON v.token_id = c.next_token_id
		WHERE c.model_id = ? ORDER BY c.seq;`)
	if err != nil {
		return nil, err
	}

	stmtGetStarts, err := db.Prepare(`
		SELECT p.prefix_text, s.frequency FROM markov_starts s
		JOIN markov_prefixes p ON p.prefix_id = s.prefix_id
		WHERE s.model_id = ? ORDER BY s.seq;`)
	if err != nil {
		return nil, err
	}

	stmtPruneModel, err := db.Prepare(`DELETE FROM markov_chains WHERE model_id = ? AND frequency <= ?;`)
	if err != nil {
		return nil, err
	}

	stmtInsertVocab, err := db.Prepare(`INSERT INTO markov_vocabulary (token_text) VALUES (?) ON CONFLICT(token_text) DO UPDATE SET token_text=excluded.token_text RETURNING token_id;`)
	if err != nil {
		return nil, err
	}

	stmtGetOrInsertPrefix, err := db.Prepare(`INSERT INTO markov_prefixes (prefix_text) VALUES (?) ON CONFLICT(prefix_text) DO UPDATE SET prefix_text=excluded.prefix_text RETURNING prefix_id;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:                    db,
		stmtGetModelInfo:      stmtGetModelInfo,
		stmtGetModels:         stmtGetModels,
		stmtGetChains:         stmtGetChains,
		stmtGetStarts:         stmtGetStarts,
		stmtPruneModel:        stmtPruneModel,
		stmtInsertVocab:       stmtInsertVocab,
		stmtGetOrInsertPrefix: stmtGetOrInsertPrefix,
		logger:                slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store. It does not
// close the underlying database.
func (s *Store) Close() {
	_ = s.stmtGetModelInfo.Close()
	_ = s.stmtGetModels.Close()
	_ = s.stmtGetChains.Close()
	_ = s.stmtGetStarts.Close()
	_ = s.stmtPruneModel.Close()
	_ = s.stmtInsertVocab.Close()
	_ = s.stmtGetOrInsertPrefix.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// ModelInfos retrieves metadata for all stored models, keyed by model name.
func (s *Store) ModelInfos(ctx context.Context) (map[string]ModelInfo, error) {
	rows, err := s.stmtGetModels.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	models := make(map[string]ModelInfo)
	for rows.Next() {
		var model ModelInfo
		if err = rows.Scan(&model.Id, &model.Name, &model.Order); err != nil {
			return nil, err
		}
		models[model.Name] = model
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return models, nil
}

// ModelInfo retrieves the metadata for a single model specified by name.
// ErrModelNotFound is returned if no such model exists.
func (s *Store) ModelInfo(ctx context.Context, name string) (ModelInfo, error) {
	info := ModelInfo{Name: name}
	err := s.stmtGetModelInfo.QueryRowContext(ctx, name).Scan(&info.Id, &info.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return ModelInfo{}, fmt.Errorf("%w: %q", ErrModelNotFound, name)
	}
	if err != nil {
		return ModelInfo{}, err
	}
	return info, nil
}

// SaveModel writes m under name, replacing any model already stored with that
// name. The entire operation is performed within a single transaction, and
// the first-seen order of chains and starts is preserved.
func (s *Store) SaveModel(ctx context.Context, name string, m *Model) (ModelInfo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("could not begin transaction for save: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	var modelID int
	err = tx.QueryRowContext(ctx, "SELECT model_id FROM markov_models WHERE model_name = ?", name).Scan(&modelID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, "INSERT INTO markov_models (model_name, model_order) VALUES (?, ?) RETURNING model_id", name, m.order).Scan(&modelID)
		if err != nil {
			return ModelInfo{}, fmt.Errorf("failed to insert model '%s': %w", name, err)
		}
	case err != nil:
		return ModelInfo{}, fmt.Errorf("failed to query for model '%s': %w", name, err)
	default:
		for _, q := range []string{
			"DELETE FROM markov_chains WHERE model_id = ?",
			"DELETE FROM markov_starts WHERE model_id = ?",
		} {
			if _, err = tx.ExecContext(ctx, q, modelID); err != nil {
				return ModelInfo{}, fmt.Errorf("failed to clear model %d: %w", modelID, err)
			}
		}
		if _, err = tx.ExecContext(ctx, "UPDATE markov_models SET model_order = ? WHERE model_id = ?", m.order, modelID); err != nil {
			return ModelInfo{}, fmt.Errorf("failed to update model %d: %w", modelID, err)
		}
	}

	stmtInsertVocab := tx.StmtContext(ctx, s.stmtInsertVocab)
	stmtGetOrInsertPrefix := tx.StmtContext(ctx, s.stmtGetOrInsertPrefix)
	stmtInsertChain, err := tx.PrepareContext(ctx, `INSERT INTO markov_chains (model_id, prefix_id, next_token_id, frequency, seq) VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("failed to prepare chain insert statement: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtInsertChain)
	stmtInsertStart, err := tx.PrepareContext(ctx, `INSERT INTO markov_starts (model_id, prefix_id, frequency, seq) VALUES (?, ?, ?, ?);`)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("failed to prepare start insert statement: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtInsertStart)

	prefixCache := make(map[string]int)
	prefixID := func(key string) (int, error) {
		if id, ok := prefixCache[key]; ok {
			return id, nil
		}
		var id int
		if err := stmtGetOrInsertPrefix.QueryRowContext(ctx, key).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to get or insert prefix '%s': %w", key, err)
		}
		prefixCache[key] = id
		return id, nil
	}
	vocabCache := make(map[string]int)
	tokenID := func(text string) (int, error) {
		if id, ok := vocabCache[text]; ok {
			return id, nil
		}
		var id int
		if err := stmtInsertVocab.QueryRowContext(ctx, text).Scan(&id); err != nil {
			return 0, fmt.Errorf("sql insert vocabulary error for token '%s': %w", text, err)
		}
		vocabCache[text] = id
		return id, nil
	}

	for seq, key := range m.startOrder {
		pid, err := prefixID(key)
		if err != nil {
			return ModelInfo{}, err
		}
		if _, err = stmtInsertStart.ExecContext(ctx, modelID, pid, m.starts[key], seq); err != nil {
			return ModelInfo{}, fmt.Errorf("failed to insert start '%s': %w", key, err)
		}
	}

	var seq, links int
	for _, key := range m.contextOrder {
		pid, err := prefixID(key)
		if err != nil {
			return ModelInfo{}, err
		}
		for _, tok := range m.chains[key].tokens {
			tid, err := tokenID(tok.Text)
			if err != nil {
				return ModelInfo{}, err
			}
			if _, err = stmtInsertChain.ExecContext(ctx, modelID, pid, tid, tok.Freq, seq); err != nil {
				return ModelInfo{}, fmt.Errorf("failed to insert chain link (%d -> %d): %w", pid, tid, err)
			}
			seq++
			links++
		}
	}

	if err = tx.Commit(); err != nil {
		return ModelInfo{}, fmt.Errorf("could not commit model '%s': %w", name, err)
	}

	s.logger.InfoContext(ctx, "Model saved",
		slog.String("model_name", name),
		slog.Int("model_id", modelID),
		slog.Int("starts_saved", len(m.startOrder)),
		slog.Int("chains_saved", links),
	)

	return ModelInfo{Id: modelID, Name: name, Order: m.order}, nil
}

// LoadModel rebuilds a stored model. The returned model samples identically
// to the one that was saved when given the same random source.
func (s *Store) LoadModel(ctx context.Context, name string) (*Model, error) {
	info, err := s.ModelInfo(ctx, name)
	if err != nil {
		return nil, err
	}
	m, err := NewModel(info.Order)
	if err != nil {
		return nil, err
	}
	width := info.Order - 1

	startRows, err := s.stmtGetStarts.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, fmt.Errorf("could not query starts for model %d: %w", info.Id, err)
	}
	for startRows.Next() {
		var key string
		var freq int
		if err = startRows.Scan(&key, &freq); err != nil {
			_ = startRows.Close()
			return nil, err
		}
		m.addStart(splitKey(key, width), freq)
	}
	if err = startRows.Err(); err != nil {
		_ = startRows.Close()
		return nil, err
	}
	_ = startRows.Close()

	chainRows, err := s.stmtGetChains.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, fmt.Errorf("could not query chains for model %d: %w", info.Id, err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(chainRows)

	var links int
	for chainRows.Next() {
		var key, next string
		var freq int
		if err = chainRows.Scan(&key, &next, &freq); err != nil {
			return nil, err
		}
		m.addTransition(splitKey(key, width), next, freq)
		links++
	}
	if err = chainRows.Err(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Model loaded",
		slog.String("model_name", name),
		slog.Int("model_id", info.Id),
		slog.Int("chains_loaded", links),
	)
	return m, nil
}

// RemoveModel deletes a model and all of its associated chain data from the
// database. The operation is performed within a transaction.
func (s *Store) RemoveModel(ctx context.Context, name string) error {
	info, err := s.ModelInfo(ctx, name)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.ExecContext(ctx, "DELETE FROM markov_chains WHERE model_id = ?", info.Id); err != nil {
		return fmt.Errorf("failed to remove chains for model %d: %w", info.Id, err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM markov_starts WHERE model_id = ?", info.Id); err != nil {
		return fmt.Errorf("failed to remove starts for model %d: %w", info.Id, err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM markov_models WHERE model_id = ?", info.Id); err != nil {
		return fmt.Errorf("failed to remove model %d: %w", info.Id, err)
	}

	s.logger.InfoContext(ctx, "Model removed successfully",
		slog.String("model_name", name),
		slog.Int("model_id", info.Id),
	)

	return tx.Commit()
}

// PruneModel removes all stored chain links of a model that have a frequency
// less than or equal to minFreq. This is useful for reducing the size of a
// model by removing rare, and often noisy, transitions. It returns the number
// of links removed.
func (s *Store) PruneModel(ctx context.Context, name string, minFreq int) (int64, error) {
	info, err := s.ModelInfo(ctx, name)
	if err != nil {
		return 0, err
	}
	res, err := s.stmtPruneModel.ExecContext(ctx, info.Id, minFreq)
	if err != nil {
		return 0, fmt.Errorf("could not prune model %d: %w", info.Id, err)
	}
	rowsAffected, _ := res.RowsAffected()

	s.logger.InfoContext(ctx, "Model pruned",
		slog.String("model_name", name),
		slog.Int("model_id", info.Id),
		slog.Int("min_frequency", minFreq),
		slog.Int64("chains_removed", rowsAffected),
	)
	return rowsAffected, nil
}
