package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
)

// CommitTimeout bounds one commit. Rows are committed one after the other
// with a pause in between, so large spreadsheets take a while.
const CommitTimeout = 60 * time.Minute

// ImportCommitter runs the commit of an import session.
type ImportCommitter interface {
	RunCommit(ctx context.Context, sessionID string, waitingList bool, paid *bool) error
}

// CommitImportTask stores the previewed rows of an import session.
type CommitImportTask struct {
	SessionID   string `json:"session_id"`
	WaitingList bool   `json:"waiting_list"`
	Paid        *bool  `json:"paid,omitempty"`
}

// Config returns the queue configuration for import commits. Commits are
// not retried: the session keeps the reports of the failed rows and the
// user decides whether to commit again.
func (t CommitImportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "commit_import",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     CommitTimeout,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CommitImportProcessor creates a processor function for CommitImportTask.
func CommitImportProcessor(committer ImportCommitter) backlite.QueueProcessor[CommitImportTask] {
	return func(ctx context.Context, task CommitImportTask) error {
		if committer == nil {
			return fmt.Errorf("import committer not configured")
		}
		if err := committer.RunCommit(ctx, task.SessionID, task.WaitingList, task.Paid); err != nil {
			return fmt.Errorf("commit import %s: %w", task.SessionID, err)
		}
		return nil
	}
}

// NewCommitImportQueue creates a backlite queue for import commits.
func NewCommitImportQueue(committer ImportCommitter) backlite.Queue {
	return backlite.NewQueue(CommitImportProcessor(committer))
}

// EnqueueCommit adds a commit task and returns its id.
func (c *Client) EnqueueCommit(_ context.Context, sessionID string, waitingList bool, paid *bool) (string, error) {
	return c.Enqueue(CommitImportTask{SessionID: sessionID, WaitingList: waitingList, Paid: paid})
}
