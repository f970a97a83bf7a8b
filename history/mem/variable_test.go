package mem

import (
	"testing"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/stretchr/testify/assert"
)

func integer(v string) history.TypedValue {
	return history.TypedValue{Type: history.ValueInteger, Value: v}
}

func TestVariable(t *testing.T) {
	assert := assert.New(t)

	s, _ := mustCreateStore(t)
	defer s.Shutdown()

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a", TenantId: "tenant"})

	scope := history.VariableScope{ProcessInstanceId: "a"}

	t.Run("set", func(t *testing.T) {
		// when
		for _, v := range []string{"1", "2", "3"} {
			mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: "foo", Value: integer(v)}))
		}

		// then
		variableInstance, err := s.CreateHistoricVariableInstanceQuery().VariableName("foo").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(variableInstance)

		assert.Equal("foo", variableInstance.Name)
		assert.Equal(2, variableInstance.Revision)
		assert.Equal(history.VariableCreated, variableInstance.State)
		assert.Equal("tenant", variableInstance.TenantId)
		assert.Equal("order:1", variableInstance.ProcessDefinitionId)
		assert.Equal("order", variableInstance.ProcessDefinitionKey)
		assert.Equal("a", variableInstance.ProcessInstanceId)
		assert.Equal(history.ValueInteger, variableInstance.Value.Type)
		assert.Equal(int64(3), variableInstance.Value.Value)
		assert.Equal(startTime, variableInstance.CreateTime)

		details, err := s.CreateHistoricDetailQuery().VariableInstanceId(variableInstance.Id).OrderPartiallyByOccurrence().Asc().List(bg)
		assert.Nil(err)
		assert.Len(details, 3)

		for i, detail := range details {
			assert.Equal(variableInstance.Id, detail.VariableInstanceId)
			assert.Equal("foo", detail.VariableName)
			assert.Equal(i, detail.Revision)
			assert.Equal(int64(i+1), detail.Value.Value)
			assert.False(detail.IsRemoval)
		}

		assert.True(details[0].IsInitial)
		assert.False(details[1].IsInitial)
		assert.False(details[2].IsInitial)
	})

	t.Run("remove", func(t *testing.T) {
		// when
		err := s.RemoveVariable(bg, history.RemoveVariableCmd{VariableScope: scope, Name: "foo"})

		// then
		assert.Nil(err)

		count, err := s.CreateHistoricVariableInstanceQuery().VariableName("foo").Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		variableInstance, err := s.CreateHistoricVariableInstanceQuery().VariableName("foo").IncludeDeleted().SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(variableInstance)
		assert.Equal(history.VariableDeleted, variableInstance.State)
		assert.Equal(3, variableInstance.Revision)
		assert.Nil(variableInstance.Value.Value)

		details, err := s.CreateHistoricDetailQuery().VariableInstanceId(variableInstance.Id).OrderPartiallyByOccurrence().Desc().List(bg)
		assert.Nil(err)
		assert.Len(details, 4)
		assert.True(details[0].IsRemoval)
		assert.Equal(history.ValueNull, details[0].Value.Type)
		assert.Nil(details[0].Value.Value)
	})

	t.Run("set after remove creates a new variable instance", func(t *testing.T) {
		// when
		err := s.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: "foo", Value: integer("4")})

		// then
		assert.Nil(err)

		results, err := s.CreateHistoricVariableInstanceQuery().VariableName("foo").IncludeDeleted().List(bg)
		assert.Nil(err)
		assert.Len(results, 2)
		assert.Equal(history.VariableDeleted, results[0].State)
		assert.Equal(history.VariableCreated, results[1].State)
		assert.Equal(0, results[1].Revision)
	})

	t.Run("remove of unknown variable is ignored", func(t *testing.T) {
		err := s.RemoveVariable(bg, history.RemoveVariableCmd{VariableScope: scope, Name: "not-existing"})
		assert.Nil(err)
	})

	t.Run("returns error when value is invalid", func(t *testing.T) {
		err := s.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: "bar", Value: integer("x")})
		assertErrorType(t, history.ErrorValidation, err)

		err = s.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: "bar", Value: integer("2147483648")})
		assertErrorType(t, history.ErrorValidation, err)
	})

	t.Run("returns error when process instance not exists", func(t *testing.T) {
		err := s.SetVariable(bg, history.SetVariableCmd{
			VariableScope: history.VariableScope{ProcessInstanceId: "not-existing"},
			Name:          "bar",
			Value:         integer("1"),
		})
		assertErrorType(t, history.ErrorNotFound, err)
	})

	t.Run("value types", func(t *testing.T) {
		// given
		values := map[string]history.TypedValue{
			"boolean": {Type: history.ValueBoolean, Value: "true"},
			"bytes":   {Type: history.ValueBytes, Bytes: []byte("abc")},
			"double":  {Type: history.ValueDouble, Value: "1.5"},
			"json":    {Type: history.ValueJson, Value: `{"x":1}`},
			"null":    {Type: history.ValueNull},
			"object":  {Type: history.ValueObject, Value: `["y"]`, ObjectTypeName: "java.util.List", SerializationDataFormat: "application/json"},
			"string":  {Type: history.ValueString, Value: "text"},
		}

		// when
		for name, value := range values {
			mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: name, Value: value}))
		}

		// then
		results, err := s.CreateHistoricVariableInstanceQuery().VariableNameIn("boolean", "bytes", "double", "json", "null", "object", "string").OrderByVariableName().Asc().List(bg)
		assert.Nil(err)
		assert.Len(results, 7)

		assert.Equal(true, results[0].Value.Value)
		assert.Equal([]byte("abc"), results[1].Value.Value)
		assert.Equal(1.5, results[2].Value.Value)
		assert.Equal(map[string]any{"x": float64(1)}, results[3].Value.Value)
		assert.Equal(`{"x":1}`, results[3].Value.SerializedValue)
		assert.Nil(results[4].Value.Value)
		assert.Equal([]any{"y"}, results[5].Value.Value)
		assert.Equal("java.util.List", results[5].Value.ObjectTypeName)
		assert.Equal("text", results[6].Value.Value)

		results, err = s.CreateHistoricVariableInstanceQuery().VariableName("bytes").DisableBinaryFetching().List(bg)
		assert.Nil(err)
		assert.Len(results, 1)
		assert.Nil(results[0].Value.Value)

		results, err = s.CreateHistoricVariableInstanceQuery().VariableName("object").DisableCustomObjectDeserialization().List(bg)
		assert.Nil(err)
		assert.Len(results, 1)
		assert.Nil(results[0].Value.Value)
		assert.Equal(`["y"]`, results[0].Value.SerializedValue)

		count, err := s.CreateHistoricVariableInstanceQuery().VariableTypeIn(history.ValueJson, history.ValueObject).Count(bg)
		assert.Nil(err)
		assert.Equal(2, count)

		count, err = s.CreateHistoricVariableInstanceQuery().VariableValueEquals("string", "text").Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)
	})

	t.Run("delete historic variable instance", func(t *testing.T) {
		// given
		variableInstance, err := s.CreateHistoricVariableInstanceQuery().VariableName("string").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(variableInstance)

		// when
		err = s.DeleteHistoricVariableInstance(bg, variableInstance.Id)

		// then
		assert.Nil(err)

		count, err := s.CreateHistoricVariableInstanceQuery().VariableInstanceId(variableInstance.Id).IncludeDeleted().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricDetailQuery().VariableInstanceId(variableInstance.Id).Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		err = s.DeleteHistoricVariableInstance(bg, variableInstance.Id)
		assertErrorType(t, history.ErrorNotFound, err)
	})
}

func TestImplicitVariableUpdate(t *testing.T) {
	assert := assert.New(t)

	s, _ := mustCreateStore(t)
	defer s.Shutdown()

	t.Run("discarded when scope ends", func(t *testing.T) {
		// given
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})

		scope := history.VariableScope{ProcessInstanceId: "a"}
		mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: "list", Value: integer("1")}))

		// when
		err := s.Transaction(bg, func(r history.Recorder) error {
			if err := r.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: "list", Value: integer("2"), Implicit: true}); err != nil {
				return err
			}
			return r.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: "a"})
		})

		// then
		assert.Nil(err)

		variableInstance, err := s.CreateHistoricVariableInstanceQuery().ProcessInstanceId("a").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(variableInstance)
		assert.Equal(0, variableInstance.Revision)
		assert.Equal(int64(1), variableInstance.Value.Value)

		count, err := s.CreateHistoricDetailQuery().ProcessInstanceId("a").Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)
	})

	t.Run("kept when observed", func(t *testing.T) {
		// given
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "b"})

		scope := history.VariableScope{ProcessInstanceId: "b"}
		mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: "list", Value: integer("1")}))

		// when
		err := s.Transaction(bg, func(r history.Recorder) error {
			if err := r.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: "list", Value: integer("2"), Implicit: true}); err != nil {
				return err
			}
			if err := r.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: "list", Value: integer("3")}); err != nil {
				return err
			}
			return r.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: "b"})
		})

		// then
		assert.Nil(err)

		variableInstance, err := s.CreateHistoricVariableInstanceQuery().ProcessInstanceId("b").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(variableInstance)
		assert.Equal(2, variableInstance.Revision)
		assert.Equal(int64(3), variableInstance.Value.Value)

		count, err := s.CreateHistoricDetailQuery().ProcessInstanceId("b").Count(bg)
		assert.Nil(err)
		assert.Equal(3, count)
	})

	t.Run("kept when scope does not end", func(t *testing.T) {
		// given
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "c"})

		scope := history.VariableScope{ProcessInstanceId: "c"}
		mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: "list", Value: integer("1")}))

		// when
		err := s.SetVariable(bg, history.SetVariableCmd{VariableScope: scope, Name: "list", Value: integer("2"), Implicit: true})

		// then
		assert.Nil(err)

		variableInstance, err := s.CreateHistoricVariableInstanceQuery().ProcessInstanceId("c").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(variableInstance)
		assert.Equal(1, variableInstance.Revision)
	})
}
