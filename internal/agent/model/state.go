package model

import (
	"github.com/cloudwego/eino/schema"

	"github.com/feedback-insight-poc/server/internal/datasource"
)

// Intent classifies what the user wants out of a run.
type Intent string

const (
	IntentFullAnalysis      Intent = "full_analysis"
	IntentSpecificQuery     Intent = "specific_query"
	IntentVisualizationOnly Intent = "visualization_only"
	IntentReportOnly        Intent = "report_only"
)

// QueryContext is the parsed user intent produced by the planner's
// classification pass.
type QueryContext struct {
	Intent                Intent   `json:"intent"`
	TimeRange             string   `json:"time_range,omitempty"`
	ChartTypes            []string `json:"chart_types,omitempty"`
	NeedsClarification    bool     `json:"needs_clarification,omitempty"`
	ClarificationQuestion string   `json:"clarification_question,omitempty"`
}

// DefaultQueryContext is the deterministic fallback when the intent
// classifier output cannot be parsed.
func DefaultQueryContext() *QueryContext {
	return &QueryContext{Intent: IntentFullAnalysis}
}

// SentimentDetail is the per-feedback sentiment label.
type SentimentDetail struct {
	FeedbackID string  `json:"feedback_id"`
	Sentiment  string  `json:"sentiment"`
	Score      float64 `json:"score"`
}

// SentimentResult aggregates sentiment counts over the fetched feedback.
type SentimentResult struct {
	Positive int               `json:"positive"`
	Negative int               `json:"negative"`
	Neutral  int               `json:"neutral"`
	Details  []SentimentDetail `json:"details,omitempty"`
}

// ClusterItem assigns one feedback entry to a cluster.
type ClusterItem struct {
	FeedbackID string `json:"feedback_id"`
	ClusterID  int    `json:"cluster_id"`
	Content    string `json:"content"`
}

// ClusterResult is the opinion-clustering output.
type ClusterResult struct {
	NClusters int               `json:"n_clusters"`
	Labels    map[string]string `json:"cluster_labels"`
	Items     []ClusterItem     `json:"items"`
}

// KnowledgeNode is one node of the hierarchical knowledge map.
type KnowledgeNode struct {
	Name     string          `json:"name"`
	Keywords []string        `json:"keywords,omitempty"`
	Children []KnowledgeNode `json:"children,omitempty"`
}

// EvaluationResult is the quality check over the finished run.
type EvaluationResult struct {
	Relevance     int      `json:"relevance"`
	Completeness  int      `json:"completeness"`
	Accuracy      int      `json:"accuracy"`
	Actionability int      `json:"actionability"`
	Score         int      `json:"score"`
	Passed        bool     `json:"passed"`
	Strengths     []string `json:"strengths,omitempty"`
	Issues        []string `json:"issues,omitempty"`
	Summary       string   `json:"summary,omitempty"`
}

// SharedState is the single unit of truth threaded through every transition
// of one conversation thread. It is persisted as-is inside the thread's
// checkpoint. Messages use append-only merge semantics; every other field is
// last-write-wins via Update.
type SharedState struct {
	ThreadID  string            `json:"thread_id,omitempty"`
	Messages  []*schema.Message `json:"messages"`
	UserInput string            `json:"user_input"`
	SheetURL  string            `json:"sheet_url,omitempty"`

	Plan             []Step `json:"plan,omitempty"`
	PlanApproved     bool   `json:"plan_approved"`
	CurrentStep      int    `json:"current_step"`
	AwaitingHuman    bool   `json:"awaiting_human"`
	InterruptMessage string `json:"interrupt_message,omitempty"`

	QueryContext *QueryContext `json:"query_context,omitempty"`

	RawData          []datasource.Record `json:"raw_data,omitempty"`
	DataSummary      string              `json:"dataframe_summary,omitempty"`
	Sentiment        *SentimentResult    `json:"sentiment_result,omitempty"`
	Clusters         *ClusterResult      `json:"clusters,omitempty"`
	KnowledgeMap     *KnowledgeNode      `json:"knowledge_map_data,omitempty"`
	WordcloudPath    string              `json:"wordcloud_path,omitempty"`
	ChartPaths       map[string]string   `json:"chart_paths,omitempty"`
	KnowledgeMapPath string              `json:"knowledge_map_path,omitempty"`
	Report           string              `json:"report,omitempty"`
	Evaluation       *EvaluationResult   `json:"evaluation_result,omitempty"`
}

// NewSharedState returns the empty state for a fresh thread.
func NewSharedState() *SharedState {
	return &SharedState{}
}

// Update is a partial state update: only set fields are merged into the
// state. Messages are appended, never replaced. Absent-able fields carry an
// explicit Clear flag so a node can distinguish "leave untouched" from
// "set back to absent".
type Update struct {
	Messages []*schema.Message

	UserInput        *string
	SheetURL         *string
	Plan             []Step
	ClearPlan        bool
	PlanApproved     *bool
	CurrentStep      *int
	AwaitingHuman    *bool
	InterruptMessage *string

	QueryContext      *QueryContext
	ClearQueryContext bool

	RawData      []datasource.Record
	ClearRawData bool
	DataSummary  *string

	Sentiment        *SentimentResult
	Clusters         *ClusterResult
	KnowledgeMap     *KnowledgeNode
	WordcloudPath    *string
	ChartPaths       map[string]string
	KnowledgeMapPath *string
	Report           *string
	Evaluation       *EvaluationResult
}

// MessageUpdate builds a message-only update.
func MessageUpdate(msgs ...*schema.Message) Update {
	return Update{Messages: msgs}
}

// Apply merges the partial update into the state.
func (s *SharedState) Apply(u Update) {
	s.Messages = append(s.Messages, u.Messages...)

	if u.UserInput != nil {
		s.UserInput = *u.UserInput
	}
	if u.SheetURL != nil {
		s.SheetURL = *u.SheetURL
	}
	if u.ClearPlan {
		s.Plan = nil
	} else if u.Plan != nil {
		s.Plan = u.Plan
	}
	if u.PlanApproved != nil {
		s.PlanApproved = *u.PlanApproved
	}
	if u.CurrentStep != nil {
		s.CurrentStep = *u.CurrentStep
	}
	if u.AwaitingHuman != nil {
		s.AwaitingHuman = *u.AwaitingHuman
	}
	if u.InterruptMessage != nil {
		s.InterruptMessage = *u.InterruptMessage
	}
	if u.ClearQueryContext {
		s.QueryContext = nil
	} else if u.QueryContext != nil {
		s.QueryContext = u.QueryContext
	}
	if u.ClearRawData {
		s.RawData = nil
		s.DataSummary = ""
	} else if u.RawData != nil {
		s.RawData = u.RawData
	}
	if u.DataSummary != nil {
		s.DataSummary = *u.DataSummary
	}
	if u.Sentiment != nil {
		s.Sentiment = u.Sentiment
	}
	if u.Clusters != nil {
		s.Clusters = u.Clusters
	}
	if u.KnowledgeMap != nil {
		s.KnowledgeMap = u.KnowledgeMap
	}
	if u.WordcloudPath != nil {
		s.WordcloudPath = *u.WordcloudPath
	}
	if u.ChartPaths != nil {
		s.ChartPaths = u.ChartPaths
	}
	if u.KnowledgeMapPath != nil {
		s.KnowledgeMapPath = *u.KnowledgeMapPath
	}
	if u.Report != nil {
		s.Report = *u.Report
	}
	if u.Evaluation != nil {
		s.Evaluation = u.Evaluation
	}
}

// PlanConsumed reports whether an approved plan has run through all of its
// steps, i.e. the machine is at (or past) the completion pause.
func (s *SharedState) PlanConsumed() bool {
	return len(s.Plan) > 0 && s.PlanApproved && s.CurrentStep >= len(s.Plan)
}
