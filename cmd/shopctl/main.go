// shopctl is a CLI tool for exercising storefront sessions.
// Each command performs a single operation, making it composable for scripts.
//
// Commands:
//
//	shopctl session -server URL
//	shopctl browse -server URL -session ID -path /products
//	shopctl products -server URL [-category NAME | -search QUERY]
//	shopctl add -server URL -session ID -product ID [-qty N]
//	shopctl cart -server URL -session ID
//	shopctl bulk -server URL -session ID -lines "ID=QTY,ID=QTY"
//	shopctl register -server URL -session ID -email E -password P
//	shopctl login -server URL -session ID -email E -password P
//	shopctl chat -server URL -session ID -message "..."
//
// Examples:
//
//	SID=$(shopctl session -q)
//	shopctl browse -session "$SID" -path "/products?category=Wheelchair"
//	shopctl add -session "$SID" -product demo-product-01 -qty 2
//	shopctl cart -session "$SID"
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

var client = &http.Client{Timeout: 30 * time.Second}

// Global flags (apply to all commands)
var (
	serverURL string
	quiet     bool
	noColor   bool
	verbose   bool
)

// ANSI color codes
var (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen = "", "", ""
	colorBlue, colorCyan, colorGray, colorBold = "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "session":
		runSession(args)
	case "browse":
		runBrowse(args)
	case "products":
		runProducts(args)
	case "add":
		runAdd(args)
	case "cart":
		runCart(args)
	case "bulk":
		runBulk(args)
	case "register":
		runRegister(args)
	case "login":
		runLogin(args)
	case "chat":
		runChat(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `shopctl - storefront session test tool

Usage:
  shopctl <command> [options]

Commands:
  session   Create a new session
  browse    Navigate the session to a path and show the view
  products  List or search the catalog
  add       Add a product to the session cart
  cart      Show the session cart
  bulk      Set the cart to an exact product/quantity list
  register  Register and sign in a customer
  login     Sign in a customer
  chat      Send one message to the store assistant

Examples:
  # Create a session and capture its id
  SID=$(shopctl session -q)

  # Browse the wheelchair category
  shopctl browse -session "$SID" -path "/products?category=Wheelchair"

  # Build up a cart and inspect it
  shopctl add -session "$SID" -product demo-product-01 -qty 2
  shopctl cart -session "$SID"

  # Replace the cart wholesale
  shopctl bulk -session "$SID" -lines "demo-product-02=1,demo-product-05=3"

Run 'shopctl <command> -h' for command-specific options.
`)
}

// commonFlags registers flags shared by every command.
func commonFlags(fs *flag.FlagSet) {
	fs.StringVar(&serverURL, "server", "http://localhost:8080", "storefront base URL")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - minimal output for scripting")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")
}

func parse(fs *flag.FlagSet, args []string) {
	fs.Parse(args)
	if noColor {
		disableColors()
	}
}

func runSession(args []string) {
	fs := flag.NewFlagSet("session", flag.ExitOnError)
	commonFlags(fs)
	var clientID string
	fs.StringVar(&clientID, "client", "", "Client ID to resume a persisted cart and login")
	parse(fs, args)

	var body map[string]any
	if clientID != "" {
		body = map[string]any{"client_id": clientID}
	}
	resp, err := doRequest("POST", "/sessions", body)
	if err != nil {
		fatal("Failed to create session: %v", err)
	}

	id, _ := resp["session_id"].(string)
	if quiet {
		fmt.Println(id)
		return
	}
	printSuccess("Session created")
	fmt.Printf("  ID: %s%s%s\n", colorCyan, id, colorReset)
	if cid, _ := resp["client_id"].(string); cid != "" {
		fmt.Printf("  Client ID: %s%s%s\n", colorCyan, cid, colorReset)
	}
}

func runBrowse(args []string) {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	commonFlags(fs)
	var sessionID, path string
	fs.StringVar(&sessionID, "session", "", "Session ID (required)")
	fs.StringVar(&path, "path", "/", "Path to navigate to")
	parse(fs, args)

	if sessionID == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("POST", "/sessions/"+url.PathEscape(sessionID)+"/navigate",
		map[string]string{"path": path})
	if err != nil {
		fatal("Failed to navigate: %v", err)
	}

	view, _ := resp["view"].(map[string]interface{})
	page, _ := view["page"].(string)
	title, _ := view["title"].(string)
	if quiet {
		fmt.Println(page)
		return
	}
	printSuccess("Now on %s%s%s", colorBold, page, colorReset)
	if title != "" {
		fmt.Printf("  Title: %s\n", title)
	}
	if redirect, ok := view["redirect"].(string); ok && redirect != "" {
		printInfo("Redirected to %s", redirect)
	}
}

func runProducts(args []string) {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	commonFlags(fs)
	var category, search string
	var limit int
	fs.StringVar(&category, "category", "", "Filter by category name")
	fs.StringVar(&search, "search", "", "Free-text search query")
	fs.IntVar(&limit, "limit", 0, "Maximum products to list")
	parse(fs, args)

	path := "/products"
	switch {
	case search != "":
		path = "/search?q=" + url.QueryEscape(search)
	case category != "":
		path = "/products?category=" + url.QueryEscape(category)
	case limit > 0:
		path = "/products?limit=" + strconv.Itoa(limit)
	}

	resp, err := doRequest("GET", path, nil)
	if err != nil {
		fatal("Failed to list products: %v", err)
	}

	products, _ := resp["products"].([]interface{})
	if quiet {
		for _, p := range products {
			if m, ok := p.(map[string]interface{}); ok {
				fmt.Println(m["id"])
			}
		}
		return
	}

	printSuccess("%d products", len(products))
	for _, p := range products {
		m, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Printf("  %s%v%s  %v %s(%v, %s)%s\n",
			colorCyan, m["id"], colorReset, m["title"],
			colorGray, m["category"], formatCents(m["price_cents"]), colorReset)
	}
}

func runAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	commonFlags(fs)
	var sessionID, productID string
	var quantity int
	fs.StringVar(&sessionID, "session", "", "Session ID (required)")
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.IntVar(&quantity, "qty", 1, "Quantity")
	parse(fs, args)

	if sessionID == "" || productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("POST", "/sessions/"+url.PathEscape(sessionID)+"/cart/items",
		map[string]interface{}{"product_id": productID, "quantity": quantity})
	if err != nil {
		fatal("Failed to add to cart: %v", err)
	}

	printCart(resp)
}

func runCart(args []string) {
	fs := flag.NewFlagSet("cart", flag.ExitOnError)
	commonFlags(fs)
	var sessionID string
	fs.StringVar(&sessionID, "session", "", "Session ID (required)")
	parse(fs, args)

	if sessionID == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("GET", "/sessions/"+url.PathEscape(sessionID)+"/view", nil)
	if err != nil {
		fatal("Failed to fetch session: %v", err)
	}

	printCart(resp)
}

func runBulk(args []string) {
	fs := flag.NewFlagSet("bulk", flag.ExitOnError)
	commonFlags(fs)
	var sessionID, lines string
	fs.StringVar(&sessionID, "session", "", "Session ID (required)")
	fs.StringVar(&lines, "lines", "", `Desired cart as "ID=QTY,ID=QTY" (required; empty value clears)`)
	parse(fs, args)

	if sessionID == "" {
		fs.Usage()
		os.Exit(1)
	}

	desired := []map[string]interface{}{}
	for _, pair := range strings.Split(lines, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, qtyRaw, ok := strings.Cut(pair, "=")
		if !ok {
			fatal("Bad -lines entry %q, want ID=QTY", pair)
		}
		qty, err := strconv.Atoi(qtyRaw)
		if err != nil {
			fatal("Bad quantity in %q: %v", pair, err)
		}
		desired = append(desired, map[string]interface{}{
			"product_id": strings.TrimSpace(id),
			"quantity":   qty,
		})
	}

	resp, err := doRequest("POST", "/sessions/"+url.PathEscape(sessionID)+"/cart/bulk",
		map[string]interface{}{"lines": desired})
	if err != nil {
		fatal("Failed to apply bulk order: %v", err)
	}

	printCart(resp)
}

func runRegister(args []string) {
	runAuth("register", args)
}

func runLogin(args []string) {
	runAuth("login", args)
}

func runAuth(action string, args []string) {
	fs := flag.NewFlagSet(action, flag.ExitOnError)
	commonFlags(fs)
	var sessionID, email, password, firstName, lastName string
	fs.StringVar(&sessionID, "session", "", "Session ID (required)")
	fs.StringVar(&email, "email", "", "Email (required)")
	fs.StringVar(&password, "password", "", "Password (required)")
	if action == "register" {
		fs.StringVar(&firstName, "first", "", "First name")
		fs.StringVar(&lastName, "last", "", "Last name")
	}
	parse(fs, args)

	if sessionID == "" || email == "" || password == "" {
		fs.Usage()
		os.Exit(1)
	}

	body := map[string]string{"email": email, "password": password}
	if firstName != "" {
		body["first_name"] = firstName
	}
	if lastName != "" {
		body["last_name"] = lastName
	}

	resp, err := doRequest("POST", "/sessions/"+url.PathEscape(sessionID)+"/"+action, body)
	if err != nil {
		fatal("Failed to %s: %v", action, err)
	}

	authed, _ := resp["authenticated"].(bool)
	if quiet {
		fmt.Println(authed)
		return
	}
	if authed {
		printSuccess("Signed in as %s", email)
	} else {
		printError("Not authenticated")
	}
}

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	commonFlags(fs)
	var sessionID, message string
	fs.StringVar(&sessionID, "session", "", "Session ID (required)")
	fs.StringVar(&message, "message", "", "Message to send (required)")
	parse(fs, args)

	if sessionID == "" || message == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("POST", "/sessions/"+url.PathEscape(sessionID)+"/chat",
		map[string]string{"message": message})
	if err != nil {
		fatal("Chat failed: %v", err)
	}

	reply, _ := resp["reply"].(string)
	if quiet {
		fmt.Println(reply)
		return
	}
	fmt.Printf("%s%s%s\n", colorBlue, reply, colorReset)
}

// printCart renders the cart summary from a session state response.
func printCart(resp map[string]interface{}) {
	cart, _ := resp["cart"].(map[string]interface{})
	if cart == nil {
		printError("No cart in response")
		return
	}

	count, _ := cart["count"].(float64)
	total, _ := cart["total"].(string)
	if quiet {
		fmt.Printf("%d %s\n", int(count), total)
		return
	}

	printSuccess("Cart: %d items, total %s%s%s", int(count), colorBold, total, colorReset)
	lines, _ := cart["lines"].([]interface{})
	for _, l := range lines {
		m, ok := l.(map[string]interface{})
		if !ok {
			continue
		}
		qty, _ := m["quantity"].(float64)
		fmt.Printf("  %s%v×%s %v %s(%s each)%s\n",
			colorCyan, int(qty), colorReset, m["title"],
			colorGray, formatCents(m["price_cents"]), colorReset)
	}
	if checkout, ok := cart["checkout_url"].(string); ok && checkout != "" {
		printInfo("Checkout: %s", checkout)
	}
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

func doRequest(method, path string, body interface{}) (map[string]interface{}, error) {
	var reqBody io.Reader
	var reqJSON []byte

	if body != nil {
		var err error
		reqJSON, err = json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	req, err := http.NewRequest(method, serverURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if verbose && !quiet {
		printRequest(method, path, reqJSON)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if verbose && !quiet {
		printResponse(resp.StatusCode, respBody, duration)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return result, nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printRequest(method, path string, body []byte) {
	fmt.Printf("\n%s▶ REQUEST%s %s%s %s%s\n", colorCyan, colorReset, colorBold, method, path, colorReset)
	if body != nil {
		printJSON(body, "  ")
	}
}

func printResponse(status int, body []byte, duration time.Duration) {
	statusColor := colorGreen
	if status >= 400 {
		statusColor = colorRed
	}
	fmt.Printf("\n%s◀ RESPONSE%s %s%d%s (%v)\n", colorCyan, colorReset, statusColor, status, colorReset, duration)
	printJSON(body, "  ")
}

func printJSON(data []byte, prefix string) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, prefix, "  "); err != nil {
		fmt.Printf("%s%s\n", prefix, string(data))
		return
	}
	fmt.Println(pretty.String())
}

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printError(format string, args ...interface{}) {
	fmt.Printf("%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

func formatCents(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return fmt.Sprintf("₹%.2f", val/100)
	case int64:
		return fmt.Sprintf("₹%.2f", float64(val)/100)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
