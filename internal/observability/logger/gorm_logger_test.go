package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL(`SELECT * FROM "invoices" WHERE contract_id = $1`))
	assert.Equal(t, "INSERT", operationFromSQL(`WITH x AS (SELECT 1) INSERT INTO "expenses" VALUES (1)`))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestTableFromSQL(t *testing.T) {
	assert.Equal(t, "invoices", tableFromSQL(`SELECT * FROM "invoices" WHERE id = 1`))
	assert.Equal(t, "expense_categories", tableFromSQL("INSERT INTO `expense_categories` (`code`) VALUES (?)"))
	assert.Equal(t, "rooms", tableFromSQL(`UPDATE "rooms" SET "name"=$1`))
	assert.Equal(t, "", tableFromSQL("BEGIN"))
}
