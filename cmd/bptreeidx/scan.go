package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuannm99/bptreeidx/internal/bptree"
	"github.com/tuannm99/bptreeidx/internal/page"
)

var (
	scanRelationName   string
	scanAttrByteOffset int32
	scanLow            int32
	scanLowOp          string
	scanHigh           int32
	scanHighOp         string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one low..high range scan against an already-built index and print matching rids",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cfgPath)
		if err != nil {
			return err
		}

		lowOp, err := parseOperator(scanLowOp)
		if err != nil {
			return err
		}
		highOp, err := parseOperator(scanHighOp)
		if err != nil {
			return err
		}

		tr, err := bptree.Open(bptree.Options{
			IndexDir:       cfg.Index.Dir,
			PageSize:       cfg.Index.PageSize,
			PoolCapacity:   cfg.Index.PoolCapacity,
			RelationName:   scanRelationName,
			AttrByteOffset: scanAttrByteOffset,
			AttrType:       page.DatatypeInteger,
		})
		if err != nil {
			return err
		}
		defer tr.Close()

		if err := tr.StartScan(scanLow, lowOp, scanHigh, highOp); err != nil {
			return err
		}
		defer tr.EndScan()

		for {
			rid, err := tr.ScanNext()
			if err == bptree.ErrIndexScanCompleted {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("%d:%d\n", rid.PageNumber, rid.SlotNumber)
		}
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanRelationName, "relation", "", "relation name (required)")
	scanCmd.Flags().Int32Var(&scanAttrByteOffset, "attr-offset", 0, "byte offset of the indexed integer attribute")
	scanCmd.Flags().Int32Var(&scanLow, "low", 0, "low bound")
	scanCmd.Flags().StringVar(&scanLowOp, "low-op", "gte", "low comparison: gt or gte")
	scanCmd.Flags().Int32Var(&scanHigh, "high", 0, "high bound")
	scanCmd.Flags().StringVar(&scanHighOp, "high-op", "lte", "high comparison: lt or lte")
	_ = scanCmd.MarkFlagRequired("relation")
}
