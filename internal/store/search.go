package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/models"
)

// SubmissionsIndexMapping is the index definition used by EnsureIndex.
const SubmissionsIndexMapping = `{
  "mappings": {
    "properties": {
      "applicationId":   {"type": "keyword"},
      "applicationType": {"type": "keyword"},
      "status":          {"type": "keyword"},
      "programTitle":    {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "programSlug":     {"type": "keyword"},
      "faculty":         {"type": "keyword"},
      "fullName":        {"type": "text"},
      "email":           {"type": "keyword"},
      "nationality":     {"type": "keyword"},
      "submittedAt":     {"type": "date"},
      "decisionDate":    {"type": "date"}
    }
  }
}`

// SubmissionDocument is what admins search over. The full record stays in
// the database.
type SubmissionDocument struct {
	ApplicationID   string     `json:"applicationId"`
	ApplicationType string     `json:"applicationType"`
	Status          string     `json:"status"`
	ProgramTitle    string     `json:"programTitle"`
	ProgramSlug     string     `json:"programSlug"`
	Faculty         string     `json:"faculty"`
	FullName        string     `json:"fullName"`
	Email           string     `json:"email"`
	Nationality     string     `json:"nationality"`
	SubmittedAt     time.Time  `json:"submittedAt"`
	DecisionDate    *time.Time `json:"decisionDate,omitempty"`
}

func NewSubmissionDocument(sub *models.Submission) SubmissionDocument {
	p := sub.Record.Personal
	return SubmissionDocument{
		ApplicationID:   sub.ApplicationID,
		ApplicationType: string(sub.ApplicationType),
		Status:          string(sub.Status),
		ProgramTitle:    sub.ProgramTitle,
		ProgramSlug:     sub.ProgramSlug,
		Faculty:         sub.Faculty,
		FullName:        strings.TrimSpace(strings.Join([]string{p.FirstName, p.OtherNames, p.Surname}, " ")),
		Email:           p.EmailAddress,
		Nationality:     p.Nationality,
		SubmittedAt:     sub.SubmittedAt,
		DecisionDate:    sub.DecisionDate,
	}
}

// SearchQuery narrows a submission search. Empty fields do not filter.
type SearchQuery struct {
	Text    string
	Status  string
	Faculty string
	From    int
	Size    int
}

type SearchResult struct {
	Total int64                `json:"total"`
	Hits  []SubmissionDocument `json:"hits"`
}

// SubmissionIndex writes and queries the admin search index.
type SubmissionIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewSubmissionIndex(client *elasticsearch.Client, index string) *SubmissionIndex {
	return &SubmissionIndex{client: client, index: index}
}

func (x *SubmissionIndex) Name() string { return x.index }

// Index upserts the document under the application id.
func (x *SubmissionIndex) Index(ctx context.Context, doc SubmissionDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewIndexingFailedError(x.index, err)
	}
	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: doc.ApplicationID,
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return errors.NewIndexingFailedError(x.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.NewIndexingFailedError(x.index, fmt.Errorf("index response: %s", res.Status()))
	}
	return nil
}

func buildSearchBody(q SearchQuery) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"fullName^3", "applicationId^2", "programTitle", "email"},
				"type":   "best_fields",
			},
		})
	}
	if q.Status != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"status": q.Status}})
	}
	if q.Faculty != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"faculty": q.Faculty}})
	}
	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"submittedAt": map[string]interface{}{"order": "desc"}},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source SubmissionDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (x *SubmissionIndex) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if q.Size <= 0 {
		q.Size = 20
	}
	body, err := json.Marshal(buildSearchBody(q))
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(x.index, err)
	}

	req := esapi.SearchRequest{
		Index: []string{x.index},
		Body:  bytes.NewReader(body),
		From:  &q.From,
		Size:  &q.Size,
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(x.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(x.index, fmt.Errorf("search response: %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError(x.index, fmt.Errorf("decode response: %w", err))
	}

	out := &SearchResult{Total: parsed.Hits.Total.Value, Hits: make([]SubmissionDocument, 0, len(parsed.Hits.Hits))}
	for _, h := range parsed.Hits.Hits {
		out.Hits = append(out.Hits, h.Source)
	}
	return out, nil
}
