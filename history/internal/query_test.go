package internal

import (
	"testing"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/stretchr/testify/assert"
)

func TestPage(t *testing.T) {
	assert := assert.New(t)

	results := []int{1, 2, 3, 4, 5}

	assert.Equal([]int{1, 2, 3, 4, 5}, Page(results, history.QueryOptions{}))
	assert.Equal([]int{3, 4, 5}, Page(results, history.QueryOptions{Offset: 2}))
	assert.Equal([]int{1, 2}, Page(results, history.QueryOptions{Limit: 2}))
	assert.Equal([]int{2, 3}, Page(results, history.QueryOptions{Offset: 1, Limit: 2}))
	assert.Equal([]int{5}, Page(results, history.QueryOptions{Offset: 4, Limit: 2}))
	assert.Empty(Page(results, history.QueryOptions{Offset: 5}))
	assert.Empty(Page(results, history.QueryOptions{Offset: 10}))
}

func TestNewQuery(t *testing.T) {
	assert := assert.New(t)

	assert.NotNil(NewQuery(history.HistoricProcessInstanceCriteria{}))
	assert.NotNil(NewQuery(history.HistoricActivityStatisticsCriteria{}))
	assert.Nil(NewQuery("unsupported"))

	assert.NotNil(NewCount(history.HistoricJobLogCriteria{}))
	assert.Nil(NewCount(struct{}{}))

	err := UnsupportedCriteriaError("unsupported")
	assert.IsType(history.Error{}, err)
	assert.Equal(history.ErrorQuery, err.(history.Error).Type)
}
