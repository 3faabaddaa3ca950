package filex

import (
	"testing"

	"github.com/dmitrijs2005/privscan/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{name: "plain", in: "report.pdf"},
		{name: "dotfile", in: ".env"},
		{name: "spaces and unicode", in: "отчёт 2024.pdf"},
		{name: "double dots inside name", in: "backup..tar"},
		{name: "empty", in: "", wantErr: common.ErrMissingFilename},
		{name: "dot", in: ".", wantErr: common.ErrInvalidFilename},
		{name: "parent", in: "..", wantErr: common.ErrInvalidFilename},
		{name: "parent escape", in: "../escape", wantErr: common.ErrInvalidFilename},
		{name: "nested parent", in: "a/../../escape", wantErr: common.ErrInvalidFilename},
		{name: "subdirectory", in: "sub/file.txt", wantErr: common.ErrInvalidFilename},
		{name: "absolute", in: "/etc/passwd", wantErr: common.ErrInvalidFilename},
		{name: "backslash", in: `..\escape`, wantErr: common.ErrInvalidFilename},
		{name: "nul", in: "a\x00b", wantErr: common.ErrInvalidFilename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
