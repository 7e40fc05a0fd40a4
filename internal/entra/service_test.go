package entra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinelmind/internal/clock"
	"sentinelmind/internal/directory"
	"sentinelmind/internal/oauth"
	"sentinelmind/internal/risk"
)

const spID = "0f3c2a9e-5b1d-4c7e-9a2f-111111111111"

var testNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type fixedToken struct{}

func (fixedToken) Token(context.Context) (oauth.RedactedToken, error) {
	return oauth.NewRedactedToken("graph-token"), nil
}

// fakeGraph serves canned responses keyed by "METHOD path" and records every
// request it sees.
type fakeGraph struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	requests  []*http.Request
	bodies    []string
}

type fakeResponse struct {
	status int
	body   string
}

func (f *fakeGraph) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, string(body))
	resp, ok := f.responses[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"Request_ResourceNotFound"}}`))
		return
	}
	if resp.status == 0 {
		resp.status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func (f *fakeGraph) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		out = append(out, r.Method+" "+r.URL.Path)
	}
	return out
}

func (f *fakeGraph) find(method, path string) (*http.Request, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.requests {
		if r.Method == method && r.URL.Path == path {
			return r, f.bodies[i]
		}
	}
	return nil, ""
}

func newTestService(t *testing.T, responses map[string]fakeResponse) (*Service, *fakeGraph) {
	t.Helper()
	graph := &fakeGraph{responses: responses}
	srv := httptest.NewServer(graph)
	t.Cleanup(srv.Close)

	client := directory.NewClient("graph", fixedToken{}, directory.WithHTTPClient(srv.Client()))
	svc := NewService(client, WithBaseURL(srv.URL+"/v1.0/"), WithClock(clock.NewManual(testNow)))
	return svc, graph
}

func iso(d time.Duration) string {
	return testNow.Add(d).Format(time.RFC3339)
}

func spBody(keyCredentials string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"displayName": "payroll-sync",
		"appId": "app-123",
		"servicePrincipalType": "Application",
		"createdDateTime": %q,
		"accountEnabled": true,
		"passwordCredentials": [
			{"keyId": "pw-1", "displayName": "ci", "startDateTime": %q, "endDateTime": %q}
		],
		"keyCredentials": [%s]
	}`, spID, iso(-400*24*time.Hour), iso(-100*24*time.Hour), iso(10*24*time.Hour), keyCredentials)
}

func TestInvestigateServicePrincipal(t *testing.T) {
	svc, graph := newTestService(t, map[string]fakeResponse{
		"GET /v1.0/servicePrincipals/" + spID:                         {body: spBody("")},
		"GET /v1.0/servicePrincipals/" + spID + "/owners":             {body: `{"value":[]}`},
		"GET /v1.0/servicePrincipals/" + spID + "/appRoleAssignments": {body: `{"value":[{"id":"a"}]}`},
		"GET /v1.0/servicePrincipals/" + spID + "/appRoleAssignedTo":  {body: `{"value":[]}`},
	})

	inv, err := svc.InvestigateServicePrincipal(context.Background(), InvestigateRequest{
		ServicePrincipalID: spID,
		IncludeAssignments: true,
		IncludeOwners:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, 35, inv.RiskAssessment.Score)
	assert.Equal(t, risk.LevelMedium, inv.RiskAssessment.Level)
	assert.Equal(t, []string{"No owners assigned", "Client secret expires within 30 days"}, inv.RiskAssessment.Signals)

	assert.Equal(t, spID, inv.ServicePrincipal.ID)
	require.NotNil(t, inv.ServicePrincipal.DisplayName)
	assert.Equal(t, "payroll-sync", *inv.ServicePrincipal.DisplayName)
	assert.Empty(t, inv.Owners)
	require.Len(t, inv.Credentials.PasswordCredentials, 1)
	require.NotNil(t, inv.Credentials.PasswordCredentials[0].DaysRemaining)
	assert.Equal(t, 10, *inv.Credentials.PasswordCredentials[0].DaysRemaining)
	require.NotNil(t, inv.Assignments)
	assert.Equal(t, 1, inv.Assignments.AppRoleAssignmentsCount)
	assert.Equal(t, 0, inv.Assignments.AppRoleAssignedToCount)

	spReq, _ := graph.find(http.MethodGet, "/v1.0/servicePrincipals/"+spID)
	require.NotNil(t, spReq)
	assert.Equal(t, servicePrincipalSelect, spReq.URL.Query().Get("$select"))
	assert.Equal(t, "Bearer graph-token", spReq.Header.Get("Authorization"))

	assignReq, _ := graph.find(http.MethodGet, "/v1.0/servicePrincipals/"+spID+"/appRoleAssignments")
	require.NotNil(t, assignReq)
	assert.Equal(t, "200", assignReq.URL.Query().Get("$top"))
}

func TestInvestigateServicePrincipal_Exclusions(t *testing.T) {
	svc, graph := newTestService(t, map[string]fakeResponse{
		"GET /v1.0/servicePrincipals/" + spID: {body: spBody("")},
	})

	inv, err := svc.InvestigateServicePrincipal(context.Background(), InvestigateRequest{
		ServicePrincipalID: spID,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"GET /v1.0/servicePrincipals/" + spID}, graph.paths())
	assert.Nil(t, inv.Assignments)

	data, err := json.Marshal(inv)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"assignments":null`)
	assert.Contains(t, string(data), `"owners":[]`)
}

func TestInvestigateServicePrincipal_MalformedCollectionsAreEmpty(t *testing.T) {
	svc, _ := newTestService(t, map[string]fakeResponse{
		"GET /v1.0/servicePrincipals/" + spID:                         {body: spBody("")},
		"GET /v1.0/servicePrincipals/" + spID + "/owners":             {body: `{"unexpected":true}`},
		"GET /v1.0/servicePrincipals/" + spID + "/appRoleAssignments": {body: `{"value":"nope"}`},
		"GET /v1.0/servicePrincipals/" + spID + "/appRoleAssignedTo":  {body: `{"value":[]}`},
	})

	inv, err := svc.InvestigateServicePrincipal(context.Background(), InvestigateRequest{
		ServicePrincipalID: spID,
		IncludeAssignments: true,
		IncludeOwners:      true,
	})
	require.NoError(t, err)
	assert.Empty(t, inv.Owners)
	assert.Equal(t, 0, inv.Assignments.AppRoleAssignmentsCount)
}

func TestInvestigateServicePrincipal_OwnersAndCertificates(t *testing.T) {
	cert := fmt.Sprintf(`{"keyId":"k-1","type":"AsymmetricX509Cert","usage":"Verify","endDateTime":%q}`, iso(3*24*time.Hour))

	svc, _ := newTestService(t, map[string]fakeResponse{
		"GET /v1.0/servicePrincipals/" + spID:             {body: spBody(cert)},
		"GET /v1.0/servicePrincipals/" + spID + "/owners": {body: `{"value":[{"id":"u1","displayName":"Ada","userPrincipalName":"ada@contoso.com"}]}`},
	})

	inv, err := svc.InvestigateServicePrincipal(context.Background(), InvestigateRequest{
		ServicePrincipalID: spID,
		IncludeOwners:      true,
	})
	require.NoError(t, err)

	require.Len(t, inv.Owners, 1)
	assert.Equal(t, "u1", inv.Owners[0].ID)
	require.Len(t, inv.Credentials.KeyCredentials, 1)
	assert.Equal(t, 3, *inv.Credentials.KeyCredentials[0].DaysRemaining)
	assert.Equal(t, []string{"Client secret expires within 30 days", "Certificate expires within 30 days"}, inv.RiskAssessment.Signals)
	assert.Equal(t, 30, inv.RiskAssessment.Score)
}

func TestInvestigateServicePrincipal_NotFound(t *testing.T) {
	svc, _ := newTestService(t, map[string]fakeResponse{})

	_, err := svc.InvestigateServicePrincipal(context.Background(), InvestigateRequest{ServicePrincipalID: spID})

	var dirErr *directory.DirectoryError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, http.StatusNotFound, dirErr.Status)
}

func TestInvestigateServicePrincipal_MissingID(t *testing.T) {
	svc, _ := newTestService(t, map[string]fakeResponse{
		"GET /v1.0/servicePrincipals/" + spID: {body: `{"displayName":"x"}`},
	})

	_, err := svc.InvestigateServicePrincipal(context.Background(), InvestigateRequest{ServicePrincipalID: spID})

	var shapeErr *directory.UnexpectedShapeError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestDisableServicePrincipal(t *testing.T) {
	svc, graph := newTestService(t, map[string]fakeResponse{
		"PATCH /v1.0/servicePrincipals/" + spID: {body: `{"accountEnabled":false}`},
	})

	raw, err := svc.DisableServicePrincipal(context.Background(), spID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"accountEnabled":false}`, string(raw))

	_, body := graph.find(http.MethodPatch, "/v1.0/servicePrincipals/"+spID)
	assert.JSONEq(t, `{"accountEnabled":false}`, body)
}

func TestDisableServicePrincipal_NoContent(t *testing.T) {
	svc, _ := newTestService(t, map[string]fakeResponse{
		"PATCH /v1.0/servicePrincipals/" + spID: {status: http.StatusNoContent},
	})

	raw, err := svc.DisableServicePrincipal(context.Background(), spID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestRevokeSessions(t *testing.T) {
	svc, graph := newTestService(t, map[string]fakeResponse{
		"POST /v1.0/servicePrincipals/" + spID + "/revokeSignInSessions": {body: `{"value":true}`},
		"POST /v1.0/users/user-1/revokeSignInSessions":                   {status: http.StatusNoContent},
	})

	raw, err := svc.RevokeServicePrincipalSessions(context.Background(), spID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":true}`, string(raw))

	raw, err = svc.RevokeUserSessions(context.Background(), "user-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	assert.Equal(t, []string{
		"POST /v1.0/servicePrincipals/" + spID + "/revokeSignInSessions",
		"POST /v1.0/users/user-1/revokeSignInSessions",
	}, graph.paths())
}

func TestRevokeUserSessions_Forbidden(t *testing.T) {
	svc, _ := newTestService(t, map[string]fakeResponse{
		"POST /v1.0/users/user-1/revokeSignInSessions": {status: http.StatusForbidden, body: `{"error":{"code":"Authorization_RequestDenied"}}`},
	})

	_, err := svc.RevokeUserSessions(context.Background(), "user-1")

	var dirErr *directory.DirectoryError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, http.StatusForbidden, dirErr.Status)
	assert.Contains(t, dirErr.Body, "Authorization_RequestDenied")
}

func TestRecentSignIns(t *testing.T) {
	svc, graph := newTestService(t, map[string]fakeResponse{
		"GET /v1.0/auditLogs/signIns": {body: `{"value":[
			{
				"createdDateTime": "2026-05-04T09:20:00Z",
				"userPrincipalName": "o'neil@contoso.com",
				"userId": "u-1",
				"ipAddress": "203.0.113.7",
				"appDisplayName": "Azure Portal",
				"isInteractive": true,
				"status": {"errorCode": 0},
				"deviceDetail": {"operatingSystem": "Windows 10", "browser": "Edge", "extra": "dropped"},
				"location": {"city": "Oslo", "countryOrRegion": "NO"}
			},
			{
				"createdDateTime": "2026-05-04T09:10:00Z",
				"userPrincipalName": "o'neil@contoso.com",
				"status": {"errorCode": 50126, "failureReason": "Invalid username or password."}
			},
			{"createdDateTime": "2026-05-04T09:05:00Z"}
		]}`},
	})

	report, err := svc.RecentSignIns(context.Background(), SignInQuery{
		WindowMinutes:     30,
		UserPrincipalName: "o'neil@contoso.com",
		Top:               5,
	})
	require.NoError(t, err)

	assert.Equal(t, 30, report.WindowMinutes)
	assert.Equal(t, 3, report.Count)
	require.Len(t, report.Events, 3)
	assert.Equal(t, "success", report.Events[0].Status)
	assert.Equal(t, "Edge", *report.Events[0].DeviceDetail.Browser)
	assert.Equal(t, "Oslo", *report.Events[0].Location.City)
	assert.Equal(t, "failure", report.Events[1].Status)
	assert.Equal(t, "Invalid username or password.", *report.Events[1].FailureReason)
	assert.Equal(t, "failure", report.Events[2].Status)
	assert.Nil(t, report.Events[2].DeviceDetail)

	req, _ := graph.find(http.MethodGet, "/v1.0/auditLogs/signIns")
	require.NotNil(t, req)
	q := req.URL.Query()
	assert.Equal(t, "5", q.Get("$top"))
	assert.Equal(t, "createdDateTime desc", q.Get("$orderby"))
	assert.Equal(t, "createdDateTime ge 2026-05-04T09:00:00.000Z and userPrincipalName eq 'o''neil@contoso.com'", q.Get("$filter"))
	assert.NotContains(t, req.URL.RawQuery, "+")

	data, err := json.Marshal(report.Events[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{"createdDateTime":"2026-05-04T09:05:00Z","status":"failure"}`, string(data))
}

func TestRecentSignIns_UnexpectedShape(t *testing.T) {
	svc, _ := newTestService(t, map[string]fakeResponse{
		"GET /v1.0/auditLogs/signIns": {body: `{"items":[]}`},
	})

	_, err := svc.RecentSignIns(context.Background(), SignInQuery{WindowMinutes: 60, Top: 10})

	var shapeErr *directory.UnexpectedShapeError
	assert.ErrorAs(t, err, &shapeErr)
}
