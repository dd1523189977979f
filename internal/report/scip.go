package report

import (
	"fmt"
	"io"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"debtguardian/internal/slice"
	"debtguardian/internal/version"
)

// WriteSCIP serializes slice sets as a SCIP index: one document per file,
// one symbol plus defining occurrence per slice. Slice ids double as symbol
// names, so downstream indexes can join findings back to code locations.
func WriteSCIP(w io.Writer, projectRoot string, sets []*slice.Set) error {
	index := &scippb.Index{
		Metadata: &scippb.Metadata{
			ToolInfo: &scippb.ToolInfo{
				Name:    "debtguardian",
				Version: version.Version,
			},
			ProjectRoot:          projectRoot,
			TextDocumentEncoding: scippb.TextEncoding_UTF8,
		},
	}

	for _, set := range sets {
		doc := &scippb.Document{
			RelativePath: set.Path,
			Language:     set.Language,
		}
		for _, sl := range set.Slices {
			doc.Symbols = append(doc.Symbols, &scippb.SymbolInformation{
				Symbol:      sl.ID,
				DisplayName: sl.QualifiedName,
				Kind:        scipKind(sl.Kind),
			})
			// SCIP ranges are zero-based [startLine, startChar, endLine, endChar]
			doc.Occurrences = append(doc.Occurrences, &scippb.Occurrence{
				Range:       []int32{int32(sl.StartLine - 1), 0, int32(sl.EndLine - 1), 0},
				Symbol:      sl.ID,
				SymbolRoles: int32(scippb.SymbolRole_Definition),
			})
		}
		index.Documents = append(index.Documents, doc)
	}

	data, err := proto.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to encode SCIP index: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func scipKind(kind slice.Kind) scippb.SymbolInformation_Kind {
	switch kind {
	case slice.KindClass:
		return scippb.SymbolInformation_Class
	case slice.KindMethod:
		return scippb.SymbolInformation_Method
	}
	return scippb.SymbolInformation_UnspecifiedKind
}
