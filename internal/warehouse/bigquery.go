package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	apperrors "viewdeploy/pkg/errors"
)

// standard SQL spellings mapped to the names the tables API reports
var fieldTypeAliases = map[string]bigquery.FieldType{
	"INT64":   bigquery.IntegerFieldType,
	"FLOAT64": bigquery.FloatFieldType,
	"BOOL":    bigquery.BooleanFieldType,
	"STRUCT":  bigquery.RecordFieldType,
}

// BigQuery publishes views through the BigQuery tables API
type BigQuery struct {
	client *bigquery.Client
}

// OpenBigQuery returns an opener creating a client for each project.
// Credentials come from the environment (application default credentials)
// unless opts say otherwise.
func OpenBigQuery(opts ...option.ClientOption) Opener {
	return func(ctx context.Context, project string) (Warehouse, error) {
		client, err := bigquery.NewClient(ctx, project, opts...)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConnectionFailed, "Failed to create BigQuery client").
				WithContext("project", project).
				WithSuggestions("Run 'gcloud auth application-default login' or set GOOGLE_APPLICATION_CREDENTIALS")
		}
		return &BigQuery{client: client}, nil
	}
}

func (b *BigQuery) table(ref ViewRef) *bigquery.Table {
	return b.client.DatasetInProject(ref.Project, ref.Dataset).Table(ref.Name)
}

func (b *BigQuery) DeleteView(ctx context.Context, ref ViewRef) error {
	if err := b.table(ref).Delete(ctx); err != nil {
		if isNotFound(err) {
			return notFound(ref, err)
		}
		return apperrors.Wrap(err, apperrors.ErrCodeSQLExecution, fmt.Sprintf("Failed to delete view %s", ref)).
			WithContext("view", ref.String())
	}
	return nil
}

func (b *BigQuery) CreateView(ctx context.Context, ref ViewRef, spec ViewSpec) error {
	meta := &bigquery.TableMetadata{
		ViewQuery:    spec.Query,
		UseLegacySQL: false,
		Description:  spec.Description,
		Labels:       spec.Labels,
	}
	if err := b.table(ref).Create(ctx, meta); err != nil {
		return apperrors.SQLError(fmt.Sprintf("Failed to create view %s", ref), spec.Query, err).
			WithContext("view", ref.String())
	}
	return nil
}

func (b *BigQuery) UpdateSchema(ctx context.Context, ref ViewRef, fields []Field) error {
	update := bigquery.TableMetadataToUpdate{Schema: toSchema(fields)}
	if _, err := b.table(ref).Update(ctx, update, ""); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSchemaUpdate, fmt.Sprintf("Failed to update schema of %s", ref)).
			WithContext("view", ref.String())
	}
	return nil
}

func (b *BigQuery) Close() error {
	return b.client.Close()
}

func toSchema(fields []Field) bigquery.Schema {
	schema := make(bigquery.Schema, 0, len(fields))
	for _, f := range fields {
		typ := strings.ToUpper(f.Type)
		fieldType, ok := fieldTypeAliases[typ]
		if !ok {
			fieldType = bigquery.FieldType(typ)
		}

		schema = append(schema, &bigquery.FieldSchema{
			Name:        f.Name,
			Type:        fieldType,
			Description: f.Description,
			Required:    f.Mode == ModeRequired,
			Repeated:    f.Mode == ModeRepeated,
		})
	}
	return schema
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
