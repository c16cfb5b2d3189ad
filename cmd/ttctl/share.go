package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yigit/lecturetable/internal/pkg/sharecode"
)

func newShareCmd() *cobra.Command {
	var base string

	share := &cobra.Command{
		Use:   "share",
		Short: "Encode and decode timetable share codes",
	}

	encode := &cobra.Command{
		Use:   "encode <course-id>...",
		Short: "Print the share code and link for course IDs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, sharecode.Encode(args))
			if base != "" {
				fmt.Fprintln(out, sharecode.Link(base, args))
			}
			return nil
		},
	}
	encode.Flags().StringVar(&base, "base", "https://lecture.syu.kr/timetable", "share link base URL (empty to skip the link)")

	decode := &cobra.Command{
		Use:   "decode <code>",
		Short: "Print the course IDs of a share code or cookie value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := sharecode.Decode(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(ids, "\n"))
			return nil
		},
	}

	share.AddCommand(encode, decode)
	return share
}
