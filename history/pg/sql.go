package pg

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
)

var (
	sqlTemplateFunctions = template.FuncMap{
		"joinString":    joinString,
		"joinValueType": joinValueType,
		"quoteString":   quoteString,
		"quoteTime":     quoteTime,
	}

	sqlActivityInstanceQuery   *template.Template = newSqlTemplate("activity_instance_query.sql")
	sqlActivityStatisticsQuery *template.Template = newSqlTemplate("activity_statistics_query.sql")
	sqlCaseInstanceQuery       *template.Template = newSqlTemplate("case_instance_query.sql")
	sqlDetailQuery             *template.Template = newSqlTemplate("detail_query.sql")
	sqlIncidentQuery           *template.Template = newSqlTemplate("incident_query.sql")
	sqlJobLogQuery             *template.Template = newSqlTemplate("job_log_query.sql")
	sqlProcessInstanceQuery    *template.Template = newSqlTemplate("process_instance_query.sql")
	sqlTaskInstanceQuery       *template.Template = newSqlTemplate("task_instance_query.sql")
	sqlVariableInstanceQuery   *template.Template = newSqlTemplate("variable_instance_query.sql")
)

func newSqlTemplate(name string) *template.Template {
	return template.Must(template.New(name).Funcs(sqlTemplateFunctions).ParseFS(resources, "sql/"+name))
}

func joinString(values []string) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = quoteString(v)
	}
	return strings.Join(s, ",")
}

func joinValueType(values []history.ValueType) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = quoteString(string(v))
	}
	return strings.Join(s, ",")
}

// copied from https://github.com/jackc/pgx/blob/v5.5.0/internal/sanitize/sanitize.go#L90
func quoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func quoteTime(value *time.Time) string {
	return quoteString(value.UTC().Format("2006-01-02 15:04:05.000")) + "::TIMESTAMP"
}

// orderBy returns the ORDER BY clause of the given sortings.
// The sequence counter is always used as last sort key, so that rows with equal timestamps keep their record order.
func orderBy(sorting []history.Sorting, columns map[string]string) string {
	var s []string
	for _, sorting := range sorting {
		column, ok := columns[sorting.Property]
		if !ok {
			continue
		}
		s = append(s, column+" "+sorting.Direction.String())
	}
	return strings.Join(append(s, "sequence_counter"), ", ")
}

// queryData returns the data of a query template.
func queryData(criteria any, options history.QueryOptions, sorting []history.Sorting, columns map[string]string) map[string]any {
	return map[string]any{
		"c":       criteria,
		"o":       options,
		"count":   false,
		"orderBy": orderBy(sorting, columns),
	}
}

// countData returns the data of a query template, that is executed as count.
func countData(criteria any) map[string]any {
	return map[string]any{
		"c":     criteria,
		"count": true,
	}
}

// statisticsData returns the data of the activity statistics template.
func statisticsData(c history.HistoricActivityStatisticsCriteria) map[string]any {
	direction := history.SortAsc
	for _, sorting := range c.Sorting {
		if sorting.Property == "activityId" && sorting.Direction == history.SortDesc {
			direction = history.SortDesc
		}
	}
	return map[string]any{
		"c":         c,
		"direction": direction.String(),
	}
}

func executeTemplate(t *template.Template, data map[string]any) (string, error) {
	var sql bytes.Buffer
	if err := t.Execute(&sql, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %v", t.Name(), err)
	}
	return sql.String(), nil
}

func queryRows[E any](tx pgx.Tx, txCtx context.Context, t *template.Template, data map[string]any, scan func(pgx.Row) (*E, error)) ([]*E, error) {
	sql, err := executeTemplate(t, data)
	if err != nil {
		return nil, err
	}
	return selectRows(tx, txCtx, sql, nil, scan)
}

func countRows(tx pgx.Tx, txCtx context.Context, t *template.Template, data map[string]any) (int, error) {
	sql, err := executeTemplate(t, data)
	if err != nil {
		return -1, err
	}

	var count int
	if err := tx.QueryRow(txCtx, sql).Scan(&count); err != nil {
		return -1, fmt.Errorf("failed to execute %s: %v", t.Name(), err)
	}

	return count, nil
}

func selectRows[E any](tx pgx.Tx, txCtx context.Context, sql string, args []any, scan func(pgx.Row) (*E, error)) ([]*E, error) {
	rows, err := tx.Query(txCtx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %v", err)
	}

	defer rows.Close()

	var results []*E
	for rows.Next() {
		entity, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		results = append(results, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %v", err)
	}

	return results, nil
}

// selectRow selects a single row. If no row exists, [pgx.ErrNoRows] is returned.
func selectRow[E any](tx pgx.Tx, txCtx context.Context, name string, sql string, args []any, scan func(pgx.Row) (*E, error)) (*E, error) {
	entity, err := scan(tx.QueryRow(txCtx, sql, args...))
	if err == pgx.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select %s %v: %v", name, args, err)
	}
	return entity, nil
}

// deleteByOwners deletes the rows of a table, which belong to one of the owners.
// Columns, a table does not have, are given as empty string.
func deleteByOwners(tx pgx.Tx, txCtx context.Context, table string, owners internal.Owners, processInstanceColumn string, caseInstanceColumn string, taskColumn string) error {
	if owners.IsEmpty() {
		return nil
	}

	var (
		conditions []string
		args       []any
	)

	add := func(column string, ids []string) {
		if column == "" || len(ids) == 0 {
			return
		}
		args = append(args, ids)
		conditions = append(conditions, fmt.Sprintf("%s = ANY($%d)", column, len(args)))
	}

	add(processInstanceColumn, owners.ProcessInstanceIds)
	add(caseInstanceColumn, owners.CaseInstanceIds)
	add(taskColumn, owners.TaskIds)

	if len(conditions) == 0 {
		return nil
	}

	sql := fmt.Sprintf("DELETE FROM %s WHERE %s", table, strings.Join(conditions, " OR "))
	if _, err := tx.Exec(txCtx, sql, args...); err != nil {
		return fmt.Errorf("failed to delete %s rows of %+v: %v", table, owners, err)
	}

	return nil
}
