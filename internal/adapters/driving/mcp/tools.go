package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query       string   `json:"query" jsonschema:"what to look for in the study material"`
	TopK        int      `json:"top_k,omitempty" jsonschema:"maximum number of passages to return (default from settings)"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"restrict the search to these documents"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved passage.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question    string   `json:"question" jsonschema:"the study question to answer"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"restrict the answer to these documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput cites a passage an answer drew on.
type SourceOutput struct {
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"relevance_score"`
}

// ListDocumentsInput is the (empty) input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput summarises an ingested document.
type DocumentOutput struct {
	ID         string `json:"doc_id"`
	Filename   string `json:"filename"`
	Subject    string `json:"subject"`
	UploadedAt string `json:"upload_time"`
	Chunks     int    `json:"num_chunks"`
}

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	Filename string `json:"filename" jsonschema:"name to store the material under"`
	Subject  string `json:"subject,omitempty" jsonschema:"optional subject such as Biology"`
	Text     string `json:"text" jsonschema:"the study material"`
}

// IngestTextOutput is the output schema for the ingest_text tool.
type IngestTextOutput struct {
	DocumentID string `json:"doc_id"`
	Filename   string `json:"filename"`
	Chunks     int    `json:"num_chunks"`
}

// DeleteDocumentInput is the input schema for the delete_document tool.
type DeleteDocumentInput struct {
	DocumentID string `json:"doc_id" jsonschema:"the document to delete"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	Deleted string `json:"deleted"`
}

// QuizInput is the input schema for the generate_quiz tool.
type QuizInput struct {
	Topic        string   `json:"topic,omitempty" jsonschema:"focus the quiz on this topic"`
	DocumentIDs  []string `json:"document_ids,omitempty" jsonschema:"restrict the quiz to these documents"`
	NumQuestions int      `json:"num_questions,omitempty" jsonschema:"number of questions from 1 to 10 (default 5)"`
}

// QuizOutput is the output schema for the generate_quiz tool.
type QuizOutput struct {
	Questions []domain.QuizItem `json:"questions"`
}

// PlanInput is the input schema for the build_study_plan tool.
type PlanInput struct {
	ExamDate    string   `json:"exam_date" jsonschema:"exam date as YYYY-MM-DD"`
	HoursPerDay float64  `json:"hours_per_day" jsonschema:"study hours per day from 1 to 12"`
	Subjects    []string `json:"subjects" jsonschema:"subjects to rotate through"`
	Save        bool     `json:"save,omitempty" jsonschema:"keep the plan so days can be marked complete"`
}

// PlanOutput is the output schema for plan tools.
type PlanOutput struct {
	ID         string          `json:"id,omitempty"`
	Days       []PlanDayOutput `json:"plan"`
	TotalDays  int             `json:"total_days"`
	TotalHours float64         `json:"total_hours"`
	Progress   float64         `json:"progress"`
}

// PlanDayOutput is one day of a plan.
type PlanDayOutput struct {
	Day       int      `json:"day"`
	Date      string   `json:"date"`
	Subject   string   `json:"subject"`
	Hours     float64  `json:"hours"`
	Topics    []string `json:"topics"`
	Completed bool     `json:"completed"`
}

// CompleteDayInput is the input schema for the complete_plan_day tool.
type CompleteDayInput struct {
	PlanID string `json:"plan_id,omitempty" jsonschema:"saved plan id (default latest)"`
	Day    int    `json:"day" jsonschema:"1-based day to mark as done"`
}

// defaultQuizQuestions is used when the caller does not ask for a count.
const defaultQuizQuestions = 5

// registerTools registers a tool for every configured port.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the passages of the study material most relevant to a query",
	}, s.handleSearch)

	if s.ports.Chat != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a study question from the indexed material, citing sources",
		}, s.handleAsk)
	}

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List ingested study documents",
		}, s.handleListDocuments)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_text",
			Description: "Add study material given as plain text",
		}, s.handleIngestText)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "delete_document",
			Description: "Delete a document and all of its passages",
		}, s.handleDeleteDocument)
	}

	if s.ports.Quiz != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "generate_quiz",
			Description: "Write multiple-choice questions grounded in the study material",
		}, s.handleQuiz)
	}

	if s.ports.Planner != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "build_study_plan",
			Description: "Build a day-by-day study schedule up to an exam date",
		}, s.handleBuildPlan)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "complete_plan_day",
			Description: "Mark a day of a saved study plan as done",
		}, s.handleCompleteDay)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	// Zero means omitted. Negative values reach Retrieve, which rejects them.
	topK := input.TopK
	if topK == 0 {
		topK = s.ports.defaultTopK()
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, input.DocumentIDs, topK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID: results[i].DocumentID,
			Filename:   results[i].Filename,
			ChunkIndex: results[i].ChunkIndex,
			Score:      results[i].Score,
			Text:       results[i].Text,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Chat.Ask(ctx, input.Question, input.DocumentIDs)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  answer.Text,
		Sources: make([]SourceOutput, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		output.Sources[i] = SourceOutput(src)
	}

	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = documentOutput(docs[i])
	}

	return nil, output, nil
}

// handleIngestText handles the ingest_text tool invocation.
func (s *Server) handleIngestText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTextInput,
) (*mcp.CallToolResult, IngestTextOutput, error) {
	result, err := s.ports.Document.Ingest(ctx, domain.IngestRequest{
		Filename: input.Filename,
		Subject:  input.Subject,
		Text:     input.Text,
	})
	if err != nil {
		return nil, IngestTextOutput{}, err
	}

	return nil, IngestTextOutput{
		DocumentID: result.DocumentID,
		Filename:   result.Filename,
		Chunks:     result.ChunkCount,
	}, nil
}

// handleDeleteDocument handles the delete_document tool invocation.
func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	if err := s.ports.Document.Delete(ctx, input.DocumentID); err != nil {
		return nil, DeleteDocumentOutput{}, err
	}
	return nil, DeleteDocumentOutput{Deleted: input.DocumentID}, nil
}

// handleQuiz handles the generate_quiz tool invocation.
func (s *Server) handleQuiz(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuizInput,
) (*mcp.CallToolResult, QuizOutput, error) {
	n := input.NumQuestions
	if n == 0 {
		n = defaultQuizQuestions
	}

	items, err := s.ports.Quiz.Generate(ctx, domain.QuizRequest{
		Topic:        input.Topic,
		DocumentIDs:  input.DocumentIDs,
		NumQuestions: n,
	})
	if err != nil {
		return nil, QuizOutput{}, err
	}

	return nil, QuizOutput{Questions: items}, nil
}

// handleBuildPlan handles the build_study_plan tool invocation.
func (s *Server) handleBuildPlan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PlanInput,
) (*mcp.CallToolResult, PlanOutput, error) {
	examDate, err := time.Parse(domain.PlanDateLayout, input.ExamDate)
	if err != nil {
		return nil, PlanOutput{}, fmt.Errorf("%w: exam_date must be YYYY-MM-DD", domain.ErrInvalidArgument)
	}

	plan, err := s.ports.Planner.Build(ctx, domain.PlanRequest{
		ExamDate:    examDate,
		HoursPerDay: input.HoursPerDay,
		Subjects:    input.Subjects,
	})
	if err != nil {
		return nil, PlanOutput{}, err
	}

	if input.Save {
		if err := s.ports.Planner.Save(ctx, plan); err != nil {
			return nil, PlanOutput{}, err
		}
	}

	return nil, planOutput(plan), nil
}

// handleCompleteDay handles the complete_plan_day tool invocation.
func (s *Server) handleCompleteDay(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompleteDayInput,
) (*mcp.CallToolResult, PlanOutput, error) {
	plan, err := s.ports.Planner.Complete(ctx, input.PlanID, input.Day)
	if err != nil {
		return nil, PlanOutput{}, err
	}
	return nil, planOutput(plan), nil
}

func documentOutput(doc domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:         doc.ID,
		Filename:   doc.Filename,
		Subject:    doc.DisplaySubject(),
		UploadedAt: doc.UploadedAt.Format(time.RFC3339),
		Chunks:     doc.ChunkCount(),
	}
}

func planOutput(plan *domain.StudyPlan) PlanOutput {
	output := PlanOutput{
		ID:         plan.ID,
		Days:       make([]PlanDayOutput, len(plan.Entries)),
		TotalDays:  plan.TotalDays,
		TotalHours: plan.TotalHours,
		Progress:   plan.Progress(),
	}
	for i, e := range plan.Entries {
		topics := e.Topics
		if topics == nil {
			topics = []string{}
		}
		output.Days[i] = PlanDayOutput{
			Day:       e.Day,
			Date:      e.DateString(),
			Subject:   e.Subject,
			Hours:     e.Hours,
			Topics:    topics,
			Completed: e.Completed,
		}
	}
	return output
}
