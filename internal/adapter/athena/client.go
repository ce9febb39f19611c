// Package athena runs read-only SQL against the transformed output table.
// The query engine itself is a managed service; this adapter only starts
// executions, polls for completion, and pages results.
package athena

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
)

// AthenaAPI is the subset of the Athena client needed to run a query.
type AthenaAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

var _ AthenaAPI = (*athena.Client)(nil)

// ResultSet holds a completed query's header and data rows as strings,
// which is how Athena returns them.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

// Client executes queries in one database with a fixed result location.
type Client struct {
	api          AthenaAPI
	database     string
	outputURI    string // s3:// URI Athena writes result files to
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewClient creates a query client. outputURI is the s3:// location Athena
// stores result files under.
func NewClient(api AthenaAPI, database, outputURI string, logger *slog.Logger) *Client {
	return &Client{
		api:          api,
		database:     database,
		outputURI:    outputURI,
		pollInterval: 500 * time.Millisecond,
		logger:       logger,
	}
}

// Query starts a query execution, waits for it to finish, and returns every
// result row. The context bounds the whole wait.
func (c *Client) Query(ctx context.Context, sql string) (ResultSet, error) {
	start, err := c.api.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{
			Database: aws.String(c.database),
		},
		ResultConfiguration: &athenatypes.ResultConfiguration{
			OutputLocation: aws.String(c.outputURI),
		},
	})
	if err != nil {
		return ResultSet{}, fmt.Errorf("start query execution: %w", err)
	}
	id := aws.ToString(start.QueryExecutionId)
	c.logger.Debug("query started", "execution_id", id)

	if err := c.waitForCompletion(ctx, id); err != nil {
		return ResultSet{}, err
	}
	return c.fetchResults(ctx, id)
}

func (c *Client) waitForCompletion(ctx context.Context, id string) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		out, err := c.api.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(id),
		})
		if err != nil {
			return fmt.Errorf("get query execution %s: %w", id, err)
		}

		status := out.QueryExecution.Status
		switch status.State {
		case athenatypes.QueryExecutionStateSucceeded:
			return nil
		case athenatypes.QueryExecutionStateFailed, athenatypes.QueryExecutionStateCancelled:
			return fmt.Errorf("query %s %s: %s", id, status.State, aws.ToString(status.StateChangeReason))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) fetchResults(ctx context.Context, id string) (ResultSet, error) {
	var rs ResultSet
	var nextToken *string
	first := true

	for {
		out, err := c.api.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: aws.String(id),
			NextToken:        nextToken,
		})
		if err != nil {
			return ResultSet{}, fmt.Errorf("get query results %s: %w", id, err)
		}

		rows := out.ResultSet.Rows
		if first && len(rows) > 0 {
			// Athena returns the header as the first row of the first page.
			rs.Columns = datumStrings(rows[0].Data)
			rows = rows[1:]
			first = false
		}
		for _, row := range rows {
			rs.Rows = append(rs.Rows, datumStrings(row.Data))
		}

		if out.NextToken == nil {
			return rs, nil
		}
		nextToken = out.NextToken
	}
}

func datumStrings(data []athenatypes.Datum) []string {
	out := make([]string, len(data))
	for i, d := range data {
		out[i] = aws.ToString(d.VarCharValue)
	}
	return out
}
