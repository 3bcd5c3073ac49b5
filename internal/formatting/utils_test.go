package formatting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"appdeployer/internal/reconciler"
)

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"name\": \"shop\"\n}", PrettyJSON(map[string]string{"name": "shop"}))
	assert.Equal(t, "[\n  \"a\",\n  \"b\"\n]", PrettyJSON([]string{"a", "b"}))
	assert.Equal(t, "null", PrettyJSON(nil))

	status := reconciler.ReconcileStatus{Name: "shop", State: reconciler.StateSynced}
	assert.Contains(t, PrettyJSON(status), `"state": "Synced"`)
}

func TestPrettyJSON_FallsBackForUnmarshalable(t *testing.T) {
	out := PrettyJSON(make(chan int))
	assert.NotEmpty(t, out)
	assert.NotContains(t, out, "{")
}
