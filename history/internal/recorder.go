package internal

import (
	"context"

	"github.com/gclaussn/go-bpmn-history/history"
)

// TransactionFunc executes a function within a store transaction, which is committed, if the function returns no error.
type TransactionFunc func(context.Context, func(Context) error) error

// Recorder implements [history.Recorder] by recording each event within its own transaction.
type Recorder struct {
	Execute TransactionFunc
}

func (r Recorder) StartProcessInstance(ctx context.Context, cmd history.StartProcessInstanceCmd) error {
	return r.Execute(ctx, func(c Context) error { return StartProcessInstance(c, cmd) })
}

func (r Recorder) EndProcessInstance(ctx context.Context, cmd history.EndProcessInstanceCmd) error {
	return r.Execute(ctx, func(c Context) error { return EndProcessInstance(c, cmd) })
}

func (r Recorder) DeleteProcessInstance(ctx context.Context, cmd history.DeleteProcessInstanceCmd) error {
	return r.Execute(ctx, func(c Context) error { return DeleteProcessInstance(c, cmd) })
}

func (r Recorder) StartActivityInstance(ctx context.Context, cmd history.StartActivityInstanceCmd) (string, error) {
	var id string
	err := r.Execute(ctx, func(c Context) error {
		var err error
		id, err = StartActivityInstance(c, cmd)
		return err
	})
	return id, err
}

func (r Recorder) EndActivityInstance(ctx context.Context, cmd history.EndActivityInstanceCmd) error {
	return r.Execute(ctx, func(c Context) error { return EndActivityInstance(c, cmd) })
}

func (r Recorder) ReparentActivityInstance(ctx context.Context, cmd history.ReparentActivityInstanceCmd) error {
	return r.Execute(ctx, func(c Context) error { return ReparentActivityInstance(c, cmd) })
}

func (r Recorder) CreateCaseInstance(ctx context.Context, cmd history.CreateCaseInstanceCmd) error {
	return r.Execute(ctx, func(c Context) error { return CreateCaseInstance(c, cmd) })
}

func (r Recorder) UpdateCaseInstanceState(ctx context.Context, cmd history.UpdateCaseInstanceStateCmd) error {
	return r.Execute(ctx, func(c Context) error { return UpdateCaseInstanceState(c, cmd) })
}

func (r Recorder) CreateTask(ctx context.Context, cmd history.CreateTaskCmd) error {
	return r.Execute(ctx, func(c Context) error { return CreateTask(c, cmd) })
}

func (r Recorder) UpdateTask(ctx context.Context, cmd history.UpdateTaskCmd) error {
	return r.Execute(ctx, func(c Context) error { return UpdateTask(c, cmd) })
}

func (r Recorder) CompleteTask(ctx context.Context, cmd history.CompleteTaskCmd) error {
	return r.Execute(ctx, func(c Context) error { return CompleteTask(c, cmd) })
}

func (r Recorder) DeleteTask(ctx context.Context, cmd history.DeleteTaskCmd) error {
	return r.Execute(ctx, func(c Context) error { return DeleteTask(c, cmd) })
}

func (r Recorder) SetVariable(ctx context.Context, cmd history.SetVariableCmd) error {
	return r.Execute(ctx, func(c Context) error { return SetVariable(c, cmd) })
}

func (r Recorder) RemoveVariable(ctx context.Context, cmd history.RemoveVariableCmd) error {
	return r.Execute(ctx, func(c Context) error { return RemoveVariable(c, cmd) })
}

func (r Recorder) CreateJob(ctx context.Context, cmd history.CreateJobCmd) error {
	return r.Execute(ctx, func(c Context) error { return CreateJob(c, cmd) })
}

func (r Recorder) FailJob(ctx context.Context, cmd history.FailJobCmd) error {
	return r.Execute(ctx, func(c Context) error { return FailJob(c, cmd) })
}

func (r Recorder) SucceedJob(ctx context.Context, cmd history.SucceedJobCmd) error {
	return r.Execute(ctx, func(c Context) error { return SucceedJob(c, cmd) })
}

func (r Recorder) DeleteJob(ctx context.Context, cmd history.DeleteJobCmd) error {
	return r.Execute(ctx, func(c Context) error { return DeleteJob(c, cmd) })
}

func (r Recorder) CreateIncident(ctx context.Context, cmd history.CreateIncidentCmd) (string, error) {
	var id string
	err := r.Execute(ctx, func(c Context) error {
		var err error
		id, err = CreateIncident(c, cmd)
		return err
	})
	return id, err
}

func (r Recorder) ResolveIncident(ctx context.Context, cmd history.ResolveIncidentCmd) error {
	return r.Execute(ctx, func(c Context) error { return ResolveIncident(c, cmd) })
}

func (r Recorder) DeleteIncident(ctx context.Context, cmd history.DeleteIncidentCmd) error {
	return r.Execute(ctx, func(c Context) error { return DeleteIncident(c, cmd) })
}

// TxRecorder implements [history.Recorder] by recording all events within the context of one transaction.
type TxRecorder struct {
	Ctx Context
}

func (r TxRecorder) StartProcessInstance(_ context.Context, cmd history.StartProcessInstanceCmd) error {
	return StartProcessInstance(r.Ctx, cmd)
}

func (r TxRecorder) EndProcessInstance(_ context.Context, cmd history.EndProcessInstanceCmd) error {
	return EndProcessInstance(r.Ctx, cmd)
}

func (r TxRecorder) DeleteProcessInstance(_ context.Context, cmd history.DeleteProcessInstanceCmd) error {
	return DeleteProcessInstance(r.Ctx, cmd)
}

func (r TxRecorder) StartActivityInstance(_ context.Context, cmd history.StartActivityInstanceCmd) (string, error) {
	return StartActivityInstance(r.Ctx, cmd)
}

func (r TxRecorder) EndActivityInstance(_ context.Context, cmd history.EndActivityInstanceCmd) error {
	return EndActivityInstance(r.Ctx, cmd)
}

func (r TxRecorder) ReparentActivityInstance(_ context.Context, cmd history.ReparentActivityInstanceCmd) error {
	return ReparentActivityInstance(r.Ctx, cmd)
}

func (r TxRecorder) CreateCaseInstance(_ context.Context, cmd history.CreateCaseInstanceCmd) error {
	return CreateCaseInstance(r.Ctx, cmd)
}

func (r TxRecorder) UpdateCaseInstanceState(_ context.Context, cmd history.UpdateCaseInstanceStateCmd) error {
	return UpdateCaseInstanceState(r.Ctx, cmd)
}

func (r TxRecorder) CreateTask(_ context.Context, cmd history.CreateTaskCmd) error {
	return CreateTask(r.Ctx, cmd)
}

func (r TxRecorder) UpdateTask(_ context.Context, cmd history.UpdateTaskCmd) error {
	return UpdateTask(r.Ctx, cmd)
}

func (r TxRecorder) CompleteTask(_ context.Context, cmd history.CompleteTaskCmd) error {
	return CompleteTask(r.Ctx, cmd)
}

func (r TxRecorder) DeleteTask(_ context.Context, cmd history.DeleteTaskCmd) error {
	return DeleteTask(r.Ctx, cmd)
}

func (r TxRecorder) SetVariable(_ context.Context, cmd history.SetVariableCmd) error {
	return SetVariable(r.Ctx, cmd)
}

func (r TxRecorder) RemoveVariable(_ context.Context, cmd history.RemoveVariableCmd) error {
	return RemoveVariable(r.Ctx, cmd)
}

func (r TxRecorder) CreateJob(_ context.Context, cmd history.CreateJobCmd) error {
	return CreateJob(r.Ctx, cmd)
}

func (r TxRecorder) FailJob(_ context.Context, cmd history.FailJobCmd) error {
	return FailJob(r.Ctx, cmd)
}

func (r TxRecorder) SucceedJob(_ context.Context, cmd history.SucceedJobCmd) error {
	return SucceedJob(r.Ctx, cmd)
}

func (r TxRecorder) DeleteJob(_ context.Context, cmd history.DeleteJobCmd) error {
	return DeleteJob(r.Ctx, cmd)
}

func (r TxRecorder) CreateIncident(_ context.Context, cmd history.CreateIncidentCmd) (string, error) {
	return CreateIncident(r.Ctx, cmd)
}

func (r TxRecorder) ResolveIncident(_ context.Context, cmd history.ResolveIncidentCmd) error {
	return ResolveIncident(r.Ctx, cmd)
}

func (r TxRecorder) DeleteIncident(_ context.Context, cmd history.DeleteIncidentCmd) error {
	return DeleteIncident(r.Ctx, cmd)
}
