package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tuannm99/bptreeidx/internal/bptree"
	"github.com/tuannm99/bptreeidx/internal/page"
	"github.com/tuannm99/bptreeidx/internal/relation"
)

var (
	buildRelationName   string
	buildAttrByteOffset int32
	buildRecordSize     int
	buildRelationFile   string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Create (or reopen) an index and bulk-load it from a relation file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cfgPath)
		if err != nil {
			return err
		}

		rel, err := relation.Open(buildRelationFile, cfg.Index.PageSize, buildRecordSize)
		if err != nil {
			return err
		}
		defer rel.Close()

		tr, err := bptree.Open(bptree.Options{
			IndexDir:       cfg.Index.Dir,
			PageSize:       cfg.Index.PageSize,
			PoolCapacity:   cfg.Index.PoolCapacity,
			RelationName:   buildRelationName,
			AttrByteOffset: buildAttrByteOffset,
			AttrType:       page.DatatypeInteger,
			Rel:            rel,
		})
		if err != nil {
			return err
		}

		slog.Info("bptreeidx.build.done", "relation", buildRelationName, "attrByteOffset", buildAttrByteOffset, "root", tr.Root())
		return tr.Close()
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildRelationName, "relation", "", "relation name (required)")
	buildCmd.Flags().Int32Var(&buildAttrByteOffset, "attr-offset", 0, "byte offset of the indexed integer attribute within a record")
	buildCmd.Flags().IntVar(&buildRecordSize, "record-size", 0, "fixed record size in the relation file, in bytes (required)")
	buildCmd.Flags().StringVar(&buildRelationFile, "relation-file", "", "path to the relation's fixed-width record file (required)")
	_ = buildCmd.MarkFlagRequired("relation")
	_ = buildCmd.MarkFlagRequired("record-size")
	_ = buildCmd.MarkFlagRequired("relation-file")
}
