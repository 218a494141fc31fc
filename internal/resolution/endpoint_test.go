package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const endpointParams = `
    "Foo": {"type": "string"},
    "Bar": {"type": "boolean", "required": true}`

func TestGenerateEndpoint_AllocationOrder(t *testing.T) {
	src := compileResolver(t, ruleSetDoc(endpointParams, `[
      {
        "endpoint": {
          "url": "https://{Foo}.example.com",
          "headers": {"x-a": ["1", "{Foo}"]},
          "properties": {
            "region": "{Foo}",
            "authSchemes": [{"name": "sigv4", "signingRegion": "{Foo}", "disableDoubleEncoding": true}]
          }
        }
      }
    ]`))

	assertOrder(t, src,
		"var unwind rulesrt.Unwind",
		"defer unwind.Run()",
		`epURL, err := rulesrt.Sprintf(alloc, "https://%v.example.com", *config.Foo)`,
		"return rulesrt.Endpoint{}, err",
		"rulesrt.FreeString(alloc, epURL)",
		"epHeaders, err := rulesrt.Alloc[rulesrt.Header](alloc, 1)",
		"rulesrt.Free(alloc, epHeaders)",
		"epHeader0, err := rulesrt.Alloc[string](alloc, 2)",
		"rulesrt.Free(alloc, epHeader0)",
		`epHeader0[0] = "1"`,
		`epHeader0Value1, err := rulesrt.Sprintf(alloc, "%v", *config.Foo)`,
		"rulesrt.FreeString(alloc, epHeader0Value1)",
		"epHeader0[1] = epHeader0Value1",
		"epHeaders[0] = rulesrt.Header{",
		"epProps, err := rulesrt.Alloc[rulesrt.Property](alloc, 1)",
		"rulesrt.Free(alloc, epProps)",
		`epPropsValue0, err := rulesrt.Sprintf(alloc, "%v", *config.Foo)`,
		"rulesrt.FreeString(alloc, epPropsValue0)",
		"epProps[0] = rulesrt.Property{",
		"epSchemes, err := rulesrt.Alloc[rulesrt.AuthScheme](alloc, 1)",
		"rulesrt.Free(alloc, epSchemes)",
		"epScheme0, err := rulesrt.Alloc[rulesrt.Property](alloc, 2)",
		"rulesrt.Free(alloc, epScheme0)",
		`epScheme0Value0, err := rulesrt.Sprintf(alloc, "%v", *config.Foo)`,
		"epSchemes[0] = rulesrt.AuthScheme{",
		"unwind.Release()",
		"return rulesrt.Endpoint{",
	)
	assert.NotContains(t, src, `"authSchemes"`)
}

func TestGenerateEndpoint_LiteralsOnly(t *testing.T) {
	src := compileResolver(t, ruleSetDoc(endpointParams, `[
      {"endpoint": {"url": "https://100%.example.com", "properties": {"n": 1.5, "flag": false, "none": null, "list": ["a", {"k": "v"}]}}}
    ]`))

	assert.Contains(t, src, `epURL, err := rulesrt.Sprintf(alloc, "https://100%%.example.com")`)
	assert.Contains(t, src, `json.Number("1.5")`)
	assert.Contains(t, src, "epProps, err := rulesrt.Alloc[rulesrt.Property](alloc, 4)")
	assert.NotContains(t, src, "epHeaders")
	assert.NotContains(t, src, "epSchemes")
	assert.NotContains(t, src, "epPropsValue")
}

func TestGenerateEndpoint_ReferenceAndCallURL(t *testing.T) {
	src := compileResolver(t, ruleSetDoc(endpointParams, `[
      {"conditions": [{"fn": "isSet", "argv": [{"ref": "Foo"}]}], "endpoint": {"url": {"ref": "Foo"}}},
      {"endpoint": {"url": {"fn": "substring", "argv": [{"ref": "Foo"}, 0, 4, false]}}}
    ]`))

	assert.Contains(t, src, `epURL, err := rulesrt.Sprintf(alloc, "%v", *config.Foo)`)
	assert.Contains(t, src, `epURL, err := rulesrt.Sprintf(alloc, "%v", *(rulesrt.Substring(*config.Foo, 0, 4, false)))`)
}

func TestGenerateEndpoint_EmptyHeaderValues(t *testing.T) {
	src := compileResolver(t, ruleSetDoc(endpointParams, `[
      {"endpoint": {"url": "https://example.com", "headers": {"x-empty": []}}}
    ]`))

	assert.Contains(t, src, "epHeaders, err := rulesrt.Alloc[rulesrt.Header](alloc, 1)")
	assert.NotContains(t, src, "epHeader0,")
}

func TestGenerateEndpoint_BadAuthScheme(t *testing.T) {
	rs := parseRuleSet(t, ruleSetDoc(endpointParams, `[
      {"endpoint": {"url": "https://example.com", "properties": {"authSchemes": [{"signingName": "s3"}]}}}
    ]`))
	_, err := newCompiler(t, rs, nil).GenerateResolver(rs.Rules)
	assert.ErrorContains(t, err, "properties")
}
