package statement

import (
	"github.com/pingcap/tidb/pkg/parser"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// VerifyMySQL parses a generated statement with the TiDB parser as a
// syntax check before it is written out. Only meaningful for the mysql
// dialect; the parser does not understand oracle or postgres MERGE.
func VerifyMySQL(sql string) error {
	p := parser.New()
	_, _, err := p.Parse(sql, "", "")
	return err
}
