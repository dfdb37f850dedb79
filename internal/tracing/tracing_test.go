// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Stdout(t *testing.T) {
	var buf bytes.Buffer
	p, err := Setup(context.Background(), Config{
		Exporter:       ExporterStdout,
		Writer:         &buf,
		Registerer:     promclient.NewRegistry(),
		ServiceVersion: "test",
	})
	require.NoError(t, err)

	_, span := p.Tracer("test").Start(context.Background(), "flowkit.validate")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "flowkit.validate")
}

func TestSetup_Meter(t *testing.T) {
	reg := promclient.NewRegistry()
	p, err := Setup(context.Background(), Config{Registerer: reg})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	c, err := p.Meter("test").Int64Counter("flowkit.test.count")
	require.NoError(t, err)
	c.Add(context.Background(), 2)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		name := strings.ReplaceAll(f.GetName(), ".", "_")
		if strings.HasPrefix(name, "flowkit_test_count") {
			found = true
		}
	}
	assert.True(t, found, "counter exposed through the registry")
}

func TestSetup_UnknownExporter(t *testing.T) {
	_, err := Setup(context.Background(), Config{Exporter: "zipkin", Registerer: promclient.NewRegistry()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown trace exporter")
}
