package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/snowflakedb/gosnowflake"

	apperrors "viewdeploy/pkg/errors"
	"viewdeploy/pkg/models"
)

// objectDoesNotExist is Snowflake's "does not exist or not authorized" error
const objectDoesNotExist = 2003

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Snowflake publishes views with plain SQL statements. The project is used as
// the database and the dataset as the schema.
type Snowflake struct {
	db *sql.DB
}

// OpenSnowflake returns an opener connecting with the given settings
func OpenSnowflake(cfg models.Snowflake) Opener {
	return func(ctx context.Context, project string) (Warehouse, error) {
		password, err := ResolvePassword(cfg.Password, cfg.Username)
		if err != nil {
			return nil, err
		}

		dsn, err := gosnowflake.DSN(&gosnowflake.Config{
			Account:   cfg.Account,
			User:      cfg.Username,
			Password:  password,
			Database:  project,
			Warehouse: cfg.Warehouse,
			Role:      cfg.Role,
		})
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "Invalid Snowflake connection settings").
				WithContext("account", cfg.Account)
		}

		db, err := sql.Open("snowflake", dsn)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConnectionFailed, "Failed to open Snowflake connection").
				WithContext("account", cfg.Account)
		}

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConnectionFailed, "Failed to connect to Snowflake").
				WithContext("account", cfg.Account).
				WithContext("warehouse", cfg.Warehouse).
				WithSuggestions("Verify your username and password", "Check the account identifier")
		}

		return NewSnowflake(db), nil
	}
}

// NewSnowflake wraps an open database handle
func NewSnowflake(db *sql.DB) *Snowflake {
	return &Snowflake{db: db}
}

func (s *Snowflake) DeleteView(ctx context.Context, ref ViewRef) error {
	name, err := qualifiedName(ref)
	if err != nil {
		return err
	}

	query := "DROP VIEW " + name
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		if isObjectMissing(err) {
			return notFound(ref, err)
		}
		return apperrors.SQLError(fmt.Sprintf("Failed to drop view %s", ref), query, err)
	}
	return nil
}

func (s *Snowflake) CreateView(ctx context.Context, ref ViewRef, spec ViewSpec) error {
	name, err := qualifiedName(ref)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("CREATE VIEW %s COMMENT = '%s' AS\n%s", name, quote(spec.Description), spec.Query)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return apperrors.SQLError(fmt.Sprintf("Failed to create view %s", ref), query, err).
			WithContext("view", ref.String())
	}
	return nil
}

// UpdateSchema sets the column comments. Snowflake views derive column types
// and nullability from the query, so only descriptions are applied.
func (s *Snowflake) UpdateSchema(ctx context.Context, ref ViewRef, fields []Field) error {
	name, err := qualifiedName(ref)
	if err != nil {
		return err
	}

	for _, f := range fields {
		if !identifierPattern.MatchString(f.Name) {
			return invalidIdentifier(f.Name)
		}

		query := fmt.Sprintf("ALTER VIEW %s MODIFY COLUMN %s COMMENT '%s'", name, f.Name, quote(f.Description))
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeSchemaUpdate, fmt.Sprintf("Failed to update column %s of %s", f.Name, ref)).
				WithContext("query", query)
		}
	}
	return nil
}

func (s *Snowflake) Close() error {
	return s.db.Close()
}

func qualifiedName(ref ViewRef) (string, error) {
	parts := []string{ref.Project, ref.Dataset, ref.Name}
	for _, p := range parts {
		if !identifierPattern.MatchString(p) {
			return "", invalidIdentifier(p)
		}
	}
	return strings.Join(parts, "."), nil
}

func invalidIdentifier(name string) error {
	return apperrors.New(apperrors.ErrCodeInvalidInput, fmt.Sprintf("%q is not a valid identifier", name)).
		WithContext("identifier", name)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func isObjectMissing(err error) bool {
	var sfErr *gosnowflake.SnowflakeError
	if errors.As(err, &sfErr) && sfErr.Number == objectDoesNotExist {
		return true
	}
	return strings.Contains(err.Error(), "does not exist")
}
