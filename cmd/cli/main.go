package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "report":
		handleReport(args)
	case "user":
		handleUser(args)
	case "stats":
		showStatistics()
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: condocare auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleReport(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: condocare report <list|mine|create|status|feedback|comment|like|dislike|unreact|delete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listReports()
	case "mine":
		listOwnReports(args[1:])
	case "create":
		createReport(args[1:])
	case "status":
		updateStatus(args[1:])
	case "feedback":
		addFeedback(args[1:])
	case "comment":
		addComment(args[1:])
	case "like":
		react(args[1:], "like")
	case "dislike":
		react(args[1:], "dislike")
	case "unreact":
		removeReaction(args[1:])
	case "delete":
		deleteReport(args[1:])
	default:
		fmt.Printf("unknown report command: %s\n", subCmd)
	}
}

func handleUser(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: condocare user <list|get|delete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listUsers()
	case "get":
		getUser(args[1:])
	case "delete":
		deleteUser(args[1:])
	default:
		fmt.Printf("unknown user command: %s\n", subCmd)
	}
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	firstName := fs.String("first", "", "first name")
	lastName := fs.String("last", "", "last name")

	fs.Parse(args)

	if *username == "" || *email == "" || *password == "" {
		fmt.Println("Error: username, email, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"username":  *username,
		"email":     *email,
		"password":  *password,
		"firstName": *firstName,
		"lastName":  *lastName,
	}

	result, status, err := postJSON("/auth/register", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 201 {
		fmt.Printf("✓ Registered: %s\n", *username)
		if data, ok := result["data"].(map[string]interface{}); ok {
			if token, ok := data["token"].(string); ok {
				saveToken(token)
			}
		}
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result["message"])
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *username == "" || *password == "" {
		fmt.Println("Error: username and password are required")
		fs.PrintDefaults()
		return
	}

	result, status, err := postJSON("/auth/login", map[string]string{
		"username": *username,
		"password": *password,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		if data, ok := result["data"].(map[string]interface{}); ok {
			if token, ok := data["token"].(string); ok {
				saveToken(token)
				fmt.Printf("✓ Logged in as: %s\n", *username)
				return
			}
		}
	}
	fmt.Printf("✗ Login failed: %v\n", result["message"])
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
}

// Report commands
func listReports() {
	result, _, err := getJSON("/reports")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printReportTable(result)
}

func listOwnReports(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: condocare report mine <username>")
		return
	}
	result, _, err := getJSON("/reports/user/" + args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printReportTable(result)
}

func printReportTable(result map[string]interface{}) {
	reports, ok := result["data"].([]interface{})
	if !ok {
		fmt.Printf("✗ %v\n", result["message"])
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REPORT\tCATEGORY\tOWNER\tSTATUS\tLIKES\tDISLIKES")
	for _, item := range reports {
		r := item.(map[string]interface{})
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\n",
			r["reportId"], r["category"], r["owner"], r["status"], r["likesCount"], r["dislikesCount"])
	}
	w.Flush()
}

func createReport(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	reportID := fs.Int64("id", 0, "report number")
	category := fs.String("category", "", "issue category")
	detail := fs.String("detail", "", "issue description")
	owner := fs.String("owner", "", "reporting username")

	fs.Parse(args)

	if *reportID == 0 || *category == "" || *detail == "" || *owner == "" {
		fmt.Println("Error: id, category, detail, and owner are required")
		fs.PrintDefaults()
		return
	}

	result, status, err := postJSON("/reports", map[string]interface{}{
		"reportId": *reportID,
		"category": *category,
		"detail":   *detail,
		"owner":    *owner,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 201 {
		fmt.Printf("✓ Report %d created\n", *reportID)
	} else {
		fmt.Printf("✗ Create failed: %v\n", result["message"])
	}
}

func updateStatus(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: condocare report status <id> <waiting|in-progress|done>")
		return
	}
	result, status, err := putJSON("/reports/"+args[0]+"/status", map[string]string{"status": args[1]})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Printf("✓ Report %s is now %s\n", args[0], args[1])
	} else {
		fmt.Printf("✗ Update failed: %v\n", result["message"])
	}
}

func addFeedback(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: condocare report feedback <id> <text>")
		return
	}
	result, status, err := putJSON("/reports/"+args[0]+"/feedback", map[string]string{"feedback": args[1]})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Println("✓ Feedback saved")
	} else {
		fmt.Printf("✗ Feedback failed: %v\n", result["message"])
	}
}

func addComment(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: condocare report comment <id> <text>")
		return
	}
	result, status, err := postJSON("/reports/"+args[0]+"/comment", map[string]string{"text": args[1]})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 201 {
		fmt.Println("✓ Comment added")
	} else {
		fmt.Printf("✗ Comment failed: %v\n", result["message"])
	}
}

func react(args []string, typ string) {
	fs := flag.NewFlagSet(typ, flag.ExitOnError)
	username := fs.String("username", "", "reacting username")
	if len(args) < 1 {
		fmt.Printf("Usage: condocare report %s <id> -username <name>\n", typ)
		return
	}
	id := args[0]
	fs.Parse(args[1:])

	if *username == "" {
		fmt.Println("Error: username is required")
		return
	}

	result, status, err := postJSON("/reports/"+id+"/"+typ, map[string]string{"username": *username})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		data := result["data"].(map[string]interface{})
		fmt.Printf("✓ %s recorded (likes: %v, dislikes: %v)\n", typ, data["likes"], data["dislikes"])
	} else {
		fmt.Printf("✗ %s failed: %v\n", typ, result["message"])
	}
}

func removeReaction(args []string) {
	fs := flag.NewFlagSet("unreact", flag.ExitOnError)
	typ := fs.String("type", "like", "reaction type: like or dislike")
	if len(args) < 1 {
		fmt.Println("Usage: condocare report unreact <id> -type <like|dislike>")
		return
	}
	id := args[0]
	fs.Parse(args[1:])

	result, status, err := postJSON("/reports/"+id+"/removeLikeDislike", map[string]string{"type": *typ})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Println("✓ Reaction removed")
	} else {
		fmt.Printf("✗ Remove failed: %v\n", result["message"])
	}
}

func deleteReport(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: condocare report delete <id>")
		return
	}
	result, status, err := doJSON(http.MethodDelete, "/reports/"+args[0], nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Printf("✓ Report %s deleted\n", args[0])
	} else {
		fmt.Printf("✗ Delete failed: %v\n", result["message"])
	}
}

func showStatistics() {
	result, _, err := getJSON("/reports/statistics")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		fmt.Printf("✗ %v\n", result["message"])
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total reports:\t%v\n", data["totalReports"])
	fmt.Fprintf(w, "Waiting:\t%v\n", data["waiting"])
	fmt.Fprintf(w, "In progress:\t%v\n", data["inProgress"])
	fmt.Fprintf(w, "Completed:\t%v\n", data["completed"])
	fmt.Fprintf(w, "Completion rate:\t%v%%\n", data["completionRate"])
	w.Flush()
}

// User commands
func listUsers() {
	result, _, err := getJSON("/users")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	users, ok := result["data"].([]interface{})
	if !ok {
		fmt.Printf("✗ %v\n", result["message"])
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE")
	for _, item := range users {
		u := item.(map[string]interface{})
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", u["id"], u["username"], u["email"], u["role"])
	}
	w.Flush()
}

func getUser(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: condocare user get <id>")
		return
	}
	result, status, err := getJSON("/users/" + args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != 200 {
		fmt.Printf("✗ %v\n", result["message"])
		return
	}
	pretty, _ := json.MarshalIndent(result["data"], "", "  ")
	fmt.Println(string(pretty))
}

func deleteUser(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: condocare user delete <id>")
		return
	}
	result, status, err := doJSON(http.MethodDelete, "/users/"+args[0], nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Printf("✓ User %s deleted\n", args[0])
	} else {
		fmt.Printf("✗ Delete failed: %v\n", result["message"])
	}
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("CONDOCARE_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func getJSON(path string) (map[string]interface{}, int, error) {
	return doJSON(http.MethodGet, path, nil)
}

func postJSON(path string, payload interface{}) (map[string]interface{}, int, error) {
	return doJSON(http.MethodPost, path, payload)
}

func putJSON(path string, payload interface{}) (map[string]interface{}, int, error) {
	return doJSON(http.MethodPut, path, payload)
}

func doJSON(method, path string, payload interface{}) (map[string]interface{}, int, error) {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, getAPIURL()+path, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	result := map[string]interface{}{}
	json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode, nil
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.condocare/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.condocare", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`CondoCare CLI

Usage:
  condocare <command> [options]

Commands:
  auth     Account management (register, login, logout, who)
  report   Issue reports (list, mine, create, status, feedback, comment, like, dislike, unreact, delete)
  user     Accounts (list, get, delete) - requires login
  stats    Report statistics
  help     Show this help message

Environment Variables:
  CONDOCARE_API    API endpoint (default: http://localhost:8080/api)

Examples:
  condocare auth register -username resident -email res@condo.local -password secret
  condocare auth login -username resident -password secret
  condocare report create -id 1001 -category plumbing -detail "leak under sink" -owner resident
  condocare report status 1 done
  condocare stats
`)
}
