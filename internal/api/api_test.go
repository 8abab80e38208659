package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/animo-app/animo/internal/cache"
	"github.com/animo-app/animo/internal/models"
	"github.com/animo-app/animo/internal/services"
	"github.com/gofiber/fiber/v2"
)

const testSecret = "test-secret"

type moodStoreStub struct {
	entries map[string]models.MoodEntry
}

func (stub *moodStoreStub) list(userID string) []models.MoodEntry {
	matched := make([]models.MoodEntry, 0)
	for _, entry := range stub.entries {
		if entry.UserID == userID {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp < matched[j].Timestamp
	})
	return matched
}

func (stub *moodStoreStub) ListByUser(userID string) ([]models.MoodEntry, error) {
	return stub.list(userID), nil
}

func (stub *moodStoreStub) ListByUserSince(userID string, sinceMillis int64) ([]models.MoodEntry, error) {
	matched := make([]models.MoodEntry, 0)
	for _, entry := range stub.list(userID) {
		if entry.Timestamp >= sinceMillis {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (stub *moodStoreStub) ListByUserBetween(userID string, startMillis int64, endMillis int64) ([]models.MoodEntry, error) {
	matched := make([]models.MoodEntry, 0)
	for _, entry := range stub.list(userID) {
		if entry.Timestamp >= startMillis && entry.Timestamp <= endMillis {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (stub *moodStoreStub) ListByIDsForUser(userID string, ids []string) ([]models.MoodEntry, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	matched := make([]models.MoodEntry, 0, len(ids))
	for _, entry := range stub.list(userID) {
		if _, ok := wanted[entry.ID]; ok {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (stub *moodStoreStub) FindByIDForUser(entryID string, userID string) (models.MoodEntry, bool, error) {
	entry, ok := stub.entries[entryID]
	if !ok || entry.UserID != userID {
		return models.MoodEntry{}, false, nil
	}
	return entry, true, nil
}

func (stub *moodStoreStub) Create(entry *models.MoodEntry) error {
	stub.entries[entry.ID] = *entry
	return nil
}

func (stub *moodStoreStub) Save(entry *models.MoodEntry) error {
	stub.entries[entry.ID] = *entry
	return nil
}

func (stub *moodStoreStub) Delete(entry *models.MoodEntry) error {
	delete(stub.entries, entry.ID)
	return nil
}

func (stub *moodStoreStub) UpdateAIAnalysis(entryID string, analysis string) error {
	entry, ok := stub.entries[entryID]
	if !ok {
		return nil
	}
	entry.AIAnalysis = analysis
	stub.entries[entryID] = entry
	return nil
}

type recordStoreStub struct {
	records []models.HealthRecord
	logs    []models.GenerationLog
}

func (stub *recordStoreStub) ListParcialByUser(userID string) ([]models.HealthRecord, error) {
	matched := make([]models.HealthRecord, 0)
	for _, record := range stub.records {
		if record.UserID == userID && record.RecordType == models.RecordTypeParcial {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

func (stub *recordStoreStub) ListByUser(userID string, limit int, includeGlobal bool) ([]models.HealthRecord, error) {
	matched := make([]models.HealthRecord, 0)
	for _, record := range stub.records {
		if record.UserID != userID {
			continue
		}
		if !includeGlobal && record.RecordType == models.RecordTypeGlobal {
			continue
		}
		matched = append(matched, record)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp > matched[j].Timestamp
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (stub *recordStoreStub) FindByIDForUser(recordID string, userID string) (models.HealthRecord, bool, error) {
	for _, record := range stub.records {
		if record.ID == recordID && record.UserID == userID {
			return record, true, nil
		}
	}
	return models.HealthRecord{}, false, nil
}

func (stub *recordStoreStub) FindGlobalByUser(userID string) (models.HealthRecord, bool, error) {
	for _, record := range stub.records {
		if record.UserID == userID && record.RecordType == models.RecordTypeGlobal {
			return record, true, nil
		}
	}
	return models.HealthRecord{}, false, nil
}

func (stub *recordStoreStub) CreateWithGenerationLog(record *models.HealthRecord, logEntry *models.GenerationLog) error {
	logEntry.HealthRecordID = record.ID
	stub.records = append(stub.records, *record)
	stub.logs = append(stub.logs, *logEntry)
	return nil
}

func (stub *recordStoreStub) Create(record *models.HealthRecord) error {
	stub.records = append(stub.records, *record)
	return nil
}

func (stub *recordStoreStub) Save(record *models.HealthRecord) error {
	for index := range stub.records {
		if stub.records[index].ID == record.ID {
			stub.records[index] = *record
			return nil
		}
	}
	stub.records = append(stub.records, *record)
	return nil
}

func (stub *recordStoreStub) Delete(record *models.HealthRecord) error {
	remaining := stub.records[:0]
	for _, existing := range stub.records {
		if existing.ID != record.ID {
			remaining = append(remaining, existing)
		}
	}
	stub.records = remaining
	return nil
}

func (stub *recordStoreStub) DeleteGlobalByUser(userID string) error {
	remaining := stub.records[:0]
	for _, existing := range stub.records {
		if existing.UserID == userID && existing.RecordType == models.RecordTypeGlobal {
			continue
		}
		remaining = append(remaining, existing)
	}
	stub.records = remaining
	return nil
}

func (stub *recordStoreStub) CountByUserAndMonth(userID string, month string) (int64, error) {
	var count int64
	for _, logEntry := range stub.logs {
		if logEntry.UserID == userID && logEntry.GenerationMonth == month && logEntry.RecordType == models.RecordTypeParcial {
			count++
		}
	}
	return count, nil
}

type planStoreStub struct {
	plans map[string]string
}

func (stub *planStoreStub) FindByUser(userID string) (models.UserPlan, error) {
	planType, ok := stub.plans[userID]
	if !ok {
		planType = models.PlanFree
	}
	return models.UserPlan{UserID: userID, PlanType: planType}, nil
}

type profileStoreStub struct{}

func (stub *profileStoreStub) FindByUser(userID string) (models.UserProfile, bool, error) {
	return models.UserProfile{}, false, nil
}

type testServer struct {
	app     *fiber.App
	moods   *moodStoreStub
	records *recordStoreStub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	moods := &moodStoreStub{entries: make(map[string]models.MoodEntry)}
	records := &recordStoreStub{}
	plans := &planStoreStub{plans: make(map[string]string)}
	profiles := &profileStoreStub{}

	cacheClient, err := cache.New("")
	if err != nil {
		t.Fatalf("cache init: %v", err)
	}

	moodService := services.NewMoodService(moods, nil, cacheClient)
	recordService := services.NewHealthRecordService(moods, records, records, plans, profiles, nil, cacheClient)
	recommendationService := services.NewRecommendationService(moods, profiles, nil, cacheClient)

	handler := NewHandler(testSecret, moodService, recordService, recommendationService)
	app := fiber.New()
	RegisterRoutes(app, handler)

	return &testServer{app: app, moods: moods, records: records}
}

func (server *testServer) seedEntries(userID string, count int) {
	base := time.Now().Add(-24 * time.Hour)
	for index := 0; index < count; index++ {
		id := fmt.Sprintf("entry-%d", len(server.moods.entries)+1)
		server.moods.entries[id] = models.MoodEntry{
			ID:        id,
			UserID:    userID,
			Score:     3,
			Timestamp: base.Add(time.Duration(index) * time.Minute).UnixMilli(),
		}
	}
}

func (server *testServer) request(t *testing.T, method string, target string, body string, userID string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, target, reader)
	if body != "" {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if userID != "" {
		token, err := BuildToken([]byte(testSecret), userID, time.Hour)
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	response, err := server.app.Test(request, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return response
}

func decodeBody(t *testing.T, response *http.Response, dest interface{}) {
	t.Helper()
	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
}

func TestAuthRequired(t *testing.T) {
	server := newTestServer(t)

	response := server.request(t, fiber.MethodGet, "/api/mood-entries", "", "")
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", response.StatusCode)
	}

	request := httptest.NewRequest(fiber.MethodGet, "/api/mood-entries", nil)
	request.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")
	response, err := server.app.Test(request, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for a garbage token, got %d", response.StatusCode)
	}

	wrongKey, err := BuildToken([]byte("other-secret"), "owner", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	request = httptest.NewRequest(fiber.MethodGet, "/api/mood-entries", nil)
	request.Header.Set(fiber.HeaderAuthorization, "Bearer "+wrongKey)
	response, err = server.app.Test(request, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for a foreign signature, got %d", response.StatusCode)
	}

	response = server.request(t, fiber.MethodGet, "/api/mood-entries", "", "owner")
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d", response.StatusCode)
	}
}

func TestHealthEndpointIsPublic(t *testing.T) {
	server := newTestServer(t)

	response := server.request(t, fiber.MethodGet, "/healthz", "", "")
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
}

func TestCreateMoodEntry(t *testing.T) {
	server := newTestServer(t)

	response := server.request(t, fiber.MethodPost, "/api/mood-entries", `{"score":4,"note":"good day"}`, "owner")
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", response.StatusCode)
	}

	var created models.MoodEntry
	decodeBody(t, response, &created)
	if created.Score != 4 || created.Note != "good day" {
		t.Fatalf("unexpected entry: %+v", created)
	}
	if created.ID == "" || created.UserID != "owner" {
		t.Fatalf("entry is missing identity: %+v", created)
	}
}

func TestCreateMoodEntryValidation(t *testing.T) {
	server := newTestServer(t)

	response := server.request(t, fiber.MethodPost, "/api/mood-entries", `{"score":9}`, "owner")
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for an out-of-range score, got %d", response.StatusCode)
	}

	response = server.request(t, fiber.MethodPost, "/api/mood-entries", `{"note":"missing score"}`, "owner")
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a missing score, got %d", response.StatusCode)
	}
}

func TestGetMissingMoodEntry(t *testing.T) {
	server := newTestServer(t)

	response := server.request(t, fiber.MethodGet, "/api/mood-entries/nope", "", "owner")
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", response.StatusCode)
	}
}

func TestDeleteMoodEntry(t *testing.T) {
	server := newTestServer(t)
	server.seedEntries("owner", 1)

	response := server.request(t, fiber.MethodDelete, "/api/mood-entries/entry-1", "", "owner")
	if response.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", response.StatusCode)
	}

	response = server.request(t, fiber.MethodDelete, "/api/mood-entries/entry-1", "", "owner")
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 on repeat delete, got %d", response.StatusCode)
	}
}

func TestGenerateHealthRecordIneligible(t *testing.T) {
	server := newTestServer(t)
	server.seedEntries("owner", 3)

	response := server.request(t, fiber.MethodPost, "/api/health-records", "", "owner")
	if response.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", response.StatusCode)
	}

	var body struct {
		Error       string                     `json:"error"`
		Eligibility services.EligibilityResult `json:"eligibility"`
	}
	decodeBody(t, response, &body)
	if body.Error == "" {
		t.Fatalf("refusal must carry a reason")
	}
	if body.Eligibility.NewMoodsCount != 3 || body.Eligibility.RequiredMoods != services.MinNewMoods {
		t.Fatalf("refusal must carry the eligibility metadata: %+v", body.Eligibility)
	}
}

func TestGenerateHealthRecordFlow(t *testing.T) {
	server := newTestServer(t)
	server.seedEntries("owner", 8)

	response := server.request(t, fiber.MethodGet, "/api/health-records/can-generate", "", "owner")
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 from can-generate, got %d", response.StatusCode)
	}
	var eligibility services.EligibilityResult
	decodeBody(t, response, &eligibility)
	if !eligibility.Allowed {
		t.Fatalf("expected generation to be allowed: %+v", eligibility)
	}

	response = server.request(t, fiber.MethodPost, "/api/health-records", "", "owner")
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", response.StatusCode)
	}
	var record models.HealthRecord
	decodeBody(t, response, &record)
	if record.RecordType != models.RecordTypeParcial || len(record.MoodEntryIDs) != 8 {
		t.Fatalf("unexpected record: %+v", record)
	}

	response = server.request(t, fiber.MethodGet, "/api/health-records/global", "", "owner")
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 from global lookup, got %d", response.StatusCode)
	}
	var global models.HealthRecord
	decodeBody(t, response, &global)
	if global.RecordType != models.RecordTypeGlobal || len(global.MoodEntryIDs) != 8 {
		t.Fatalf("unexpected global record: %+v", global)
	}
}

func TestDeleteHealthRecordStatusMapping(t *testing.T) {
	server := newTestServer(t)
	server.records.records = append(server.records.records,
		models.HealthRecord{ID: "parcial-1", UserID: "owner", RecordType: models.RecordTypeParcial},
		models.HealthRecord{ID: "global-1", UserID: "owner", RecordType: models.RecordTypeGlobal},
	)

	response := server.request(t, fiber.MethodDelete, "/api/health-records/missing", "", "owner")
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for a missing record, got %d", response.StatusCode)
	}

	response = server.request(t, fiber.MethodDelete, "/api/health-records/global-1", "", "owner")
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a global record, got %d", response.StatusCode)
	}

	response = server.request(t, fiber.MethodDelete, "/api/health-records/parcial-1", "", "owner")
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	var body struct {
		Deleted bool   `json:"deleted"`
		Message string `json:"message"`
	}
	decodeBody(t, response, &body)
	if !body.Deleted || !strings.Contains(body.Message, "not restored") {
		t.Fatalf("delete response must document the quota policy: %+v", body)
	}
}

func TestRecommendationEndpoint(t *testing.T) {
	server := newTestServer(t)

	response := server.request(t, fiber.MethodGet, "/api/recommendations", "", "owner")
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}

	var body struct {
		Recommendation string `json:"recommendation"`
	}
	decodeBody(t, response, &body)
	if !strings.Contains(body.Recommendation, "Start logging") {
		t.Fatalf("expected the starter recommendation, got %q", body.Recommendation)
	}
}

func TestMoodEntriesDateRangeValidation(t *testing.T) {
	server := newTestServer(t)

	response := server.request(t, fiber.MethodGet, "/api/mood-entries/date-range?start=oops&end=2026-03-01", "", "owner")
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a bad start bound, got %d", response.StatusCode)
	}

	response = server.request(t, fiber.MethodGet, "/api/mood-entries/date-range?start=2026-03-02&end=2026-03-01", "", "owner")
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for an inverted range, got %d", response.StatusCode)
	}

	response = server.request(t, fiber.MethodGet, "/api/mood-entries/date-range?start=2026-03-01&end=2026-03-02", "", "owner")
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for a valid range, got %d", response.StatusCode)
	}
}
