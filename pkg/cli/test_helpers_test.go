package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the CLI with an isolated environment and returns its output
// streams and exit code.
func execute(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	for _, k := range []string{"LOG_LEVEL", "GEO_CONFIG_PATH", "METASTORE_PATH", "MODELER_NATIVE_DATASOURCE", "MODELER_BATCH_LIMIT"} {
		t.Setenv(k, "")
	}
	var out, errOut bytes.Buffer
	args = append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...)
	code = run(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

// writeFile writes content into a fresh temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const orderfactJob = `apiVersion: refinery/v1
kind: ModelingJob
metadata:
  name: Orders
spec:
  connection: {name: SampleData, table: orderfact}
  source:
    fields:
      - {name: QuantityOrdered, type: Integer}
      - {name: TotalPrice, type: Number}
      - {name: ProductCode, type: String}
      - {name: Status, type: String}
    mapping:
      - {stream: Quantity Ordered, column: QuantityOrdered}
      - {stream: Total Price, column: TotalPrice}
      - {stream: Product Code, column: ProductCode}
      - {stream: Status, column: Status}
  annotations:
    - createMeasure: {name: Average Price, field: TotalPrice, aggregation: AVG}
    - createAttribute: {name: Code, field: Product Code, dimension: Product}
    - createAttribute: {name: Line, field: Status, dimension: Product, parentAttribute: Missing}
`

const productsJob = `apiVersion: refinery/v1
kind: ModelingJob
metadata:
  name: ProductDim
spec:
  connection: {name: SampleData, table: products}
  source:
    fields:
      - {name: ProductCode, type: String}
      - {name: ProductLine, type: String}
  sharedDimension: Products
  annotations:
    - createDimensionKey: {dimension: Product, field: ProductCode}
    - createAttribute: {name: Line, field: ProductLine, dimension: Product}
    - createAttribute: {name: Code, field: ProductCode, dimension: Product, parentAttribute: Line}
`

const linkJob = `apiVersion: refinery/v1
kind: ModelingJob
metadata:
  name: Sales
spec:
  connection: {name: SampleData, table: sales}
  source:
    fields:
      - {name: ProductCode, type: String}
      - {name: Amount, type: Number}
  annotations:
    - linkDimension: {name: Product, field: ProductCode, sharedDimension: Products}
`

const emptyJob = `apiVersion: refinery/v1
kind: ModelingJob
metadata:
  name: Empty
spec:
  connection: {name: SampleData}
  source:
    fields:
      - {name: a, type: String}
    mapping:
      - {stream: b, column: b}
`

const geoProperties = `geo.roles = country, state
geo.country.aliases = ctry
geo.state.aliases = province
geo.state.required-parents = country
`
