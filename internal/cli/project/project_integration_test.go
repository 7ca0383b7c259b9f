package project

import (
	"strings"
	"testing"

	"github.com/thenoetrevino/projecthub/internal/cli"
	testutilcli "github.com/thenoetrevino/projecthub/internal/testutil/cli"
)

func TestCreateProjectAndMembers(t *testing.T) {
	_, app := testutilcli.SetupCLITest(t)

	output, err := testutilcli.ExecuteCLICommand(t, app, CreateCmd(),
		[]string{"--name", "Apollo", "--as", "u-lead", "--quiet"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	projectID := strings.TrimSpace(output)
	if projectID == "" {
		t.Fatal("Expected the new project ID")
	}

	_, err = testutilcli.ExecuteCLICommand(t, app, MemberCmd(),
		[]string{"add", "--project", projectID, "--user", "u-dev", "--role", "scrum master", "--as", "u-lead"})
	if err != nil {
		t.Fatalf("member add failed: %v", err)
	}

	_, err = testutilcli.ExecuteCLICommand(t, app, MemberCmd(),
		[]string{"add", "--project", projectID, "--user", "u-x", "--as", "u-dev"})
	if cli.ExitCodeFor(err) != cli.ExitPermission {
		t.Errorf("Expected a scrum master to be refused member management, got %v", err)
	}

	_, err = testutilcli.ExecuteCLICommand(t, app, MemberCmd(),
		[]string{"add", "--project", projectID, "--user", "u-x", "--role", "boss", "--as", "u-lead"})
	if err == nil {
		t.Error("Expected an unknown role to be rejected")
	}

	output, err = testutilcli.ExecuteCLICommand(t, app, MemberCmd(),
		[]string{"list", "--project", projectID, "--as", "u-dev"})
	if err != nil {
		t.Fatalf("member list failed: %v", err)
	}
	for _, want := range []string{"u-lead", "PRODUCT_OWNER", "u-dev", "SCRUM_MASTER"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in member list:\n%s", want, output)
		}
	}

	output, err = testutilcli.ExecuteCLICommand(t, app, ListCmd(), []string{"--as", "u-dev"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(output, "Apollo") {
		t.Errorf("Expected Apollo in the project list:\n%s", output)
	}
}

func TestProjectSummary(t *testing.T) {
	repo, app := testutilcli.SetupCLITest(t)
	testutilcli.CreateTestProject(t, repo, "p1")

	output, err := testutilcli.ExecuteCLICommand(t, app, SummaryCmd(), []string{"--project", "p1", "--json", "--as", testutilcli.DeveloperID})
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	data := testutilcli.JSONData(t, output)
	if data["activeSprints"] != float64(0) || data["totalTodo"] != float64(0) {
		t.Errorf("Expected an empty summary without active sprints, got %v", data)
	}

	_, err = testutilcli.ExecuteCLICommand(t, app, SummaryCmd(), []string{"--project", "ghost", "--as", testutilcli.DeveloperID})
	if cli.ExitCodeFor(err) != cli.ExitNotFound {
		t.Errorf("Expected not found for an unknown project, got %v", err)
	}
}
