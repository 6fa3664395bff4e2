// Package ofx converts OFX/QFX bank statements into purchase drafts so
// statement charges can flow through the normal composition path.
package ofx

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// Charge is one outgoing statement transaction.
type Charge struct {
	Date   time.Time
	Payee  string
	Memo   string
	Hash   string
	Amount decimal.Decimal
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns its outgoing charges.
// Credits (deposits, refunds) are skipped: only money leaving the
// account becomes a purchase.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) ([]Charge, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var charges []Charge
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			charges = append(charges, p.convertTransactions(stmt.BankTranList.Transactions)...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			charges = append(charges, p.convertTransactions(stmt.BankTranList.Transactions)...)
		}
	}

	slog.Info("Parsed OFX file",
		"charges", len(charges),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return charges, nil
}

func (p *Parser) convertTransactions(transactions []ofxgo.Transaction) []Charge {
	var charges []Charge
	for _, ofxTx := range transactions {
		amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)
		// OFX uses negative amounts for debits; skip credits.
		if !amount.IsNegative() {
			continue
		}
		charge := Charge{
			Date:   ofxTx.DtPosted.Time,
			Payee:  extractPayee(ofxTx),
			Memo:   string(ofxTx.Memo),
			Amount: amount.Neg(),
		}
		charge.Hash = chargeHash(charge)
		charges = append(charges, charge)
	}
	return charges
}

// extractPayee tries to get a clean merchant name from OFX data.
func extractPayee(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}
	if name == "" {
		name = "Unknown merchant"
	}
	return name
}

// chargeHash builds a stable key for duplicate detection within one
// import run.
func chargeHash(c Charge) string {
	data := fmt.Sprintf("%s:%s:%s",
		c.Date.Format("2006-01-02"),
		c.Amount.StringFixed(2),
		strings.ToLower(c.Payee))
	return fmt.Sprintf("%x", sha256.Sum256([]byte(data)))
}
