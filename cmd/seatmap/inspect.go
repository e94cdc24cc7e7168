package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/seatmap/internal/archive"
	"github.com/samcharles93/seatmap/internal/export"
	"github.com/samcharles93/seatmap/internal/geo"
	"github.com/samcharles93/seatmap/internal/logger"
	"github.com/samcharles93/seatmap/internal/skeleton"
	"github.com/samcharles93/seatmap/pkg/m2"
)

type modelReport struct {
	Path        string             `json:"path" yaml:"path" cbor:"path"`
	Digest      string             `json:"digest" yaml:"digest" cbor:"digest"`
	Name        string             `json:"name" yaml:"name" cbor:"name"`
	Version     uint32             `json:"version" yaml:"version" cbor:"version"`
	Chunked     bool               `json:"chunked" yaml:"chunked" cbor:"chunked"`
	Sequences   int                `json:"sequences" yaml:"sequences" cbor:"sequences"`
	Textures    []string           `json:"textures,omitempty" yaml:"textures,omitempty" cbor:"textures,omitempty"`
	Bones       []boneReport       `json:"bones,omitempty" yaml:"bones,omitempty" cbor:"bones,omitempty"`
	Attachments []attachmentReport `json:"attachments" yaml:"attachments" cbor:"attachments"`
}

type boneReport struct {
	Index  int        `json:"index" yaml:"index" cbor:"index"`
	Parent int16      `json:"parent" yaml:"parent" cbor:"parent"`
	Flags  uint32     `json:"flags" yaml:"flags" cbor:"flags"`
	Pivot  [3]float32 `json:"pivot" yaml:"pivot" cbor:"pivot"`
}

type attachmentReport struct {
	ID       uint32     `json:"id" yaml:"id" cbor:"id"`
	Name     string     `json:"name" yaml:"name" cbor:"name"`
	Bone     int16      `json:"bone" yaml:"bone" cbor:"bone"`
	Position [3]float32 `json:"position" yaml:"position" cbor:"position"`
	World    [3]float32 `json:"world" yaml:"world" cbor:"world"`
	Mapped   bool       `json:"mapped" yaml:"mapped" cbor:"mapped"`
	Error    string     `json:"error,omitempty" yaml:"error,omitempty" cbor:"error,omitempty"`
}

func inspectCmd() *cli.Command {
	var (
		modelName string
		format    string
		showBones bool
	)

	return &cli.Command{
		Name:   "inspect",
		Usage:  "Print a model's header, attachments and their evaluated positions",
		Before: setup,
		Flags: withFlags(providerFlags(), loggingFlags(), []cli.Flag{
			&cli.StringFlag{
				Name:        "model",
				Aliases:     []string{"m"},
				Usage:       "local .m2 file or client path such as Creature\\Bear\\Bear.m2",
				Destination: &modelName,
			},
			&cli.BoolFlag{
				Name:        "bones",
				Usage:       "include the bone hierarchy",
				Destination: &showBones,
			},
			formatFlag(&format),
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyOutputConfig(cmd, config, &format)
			f, err := export.ParseFormat(format)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			if modelName == "" {
				return cli.Exit("--model is required", 2)
			}

			var provider archive.Provider
			if _, statErr := os.Stat(modelName); statErr != nil {
				p, closeProvider, err := openProvider(ctx, log)
				if err != nil {
					return err
				}
				defer func() { _ = closeProvider() }()
				provider = p
			}
			data, err := readModelFile(ctx, provider, modelName)
			if err != nil {
				return err
			}

			report, err := inspectModel(modelName, data, showBones)
			if err != nil {
				return err
			}
			if f == export.FormatText {
				return writeModelReport(os.Stdout, report)
			}
			return export.Value(os.Stdout, f, report)
		},
	}
}

func inspectModel(path string, data []byte, withBones bool) (modelReport, error) {
	model, err := m2.Parse(data)
	if err != nil {
		return modelReport{}, fmt.Errorf("%s: %w", path, err)
	}
	r := modelReport{
		Path:    path,
		Digest:  archive.Digest(data),
		Version: model.Version(),
		Chunked: model.Chunked(),
	}
	if r.Name, err = model.Name(); err != nil {
		return r, err
	}
	seqs, err := model.Sequences()
	if err != nil {
		return r, err
	}
	r.Sequences = seqs.Len()
	if r.Textures, err = model.TextureNames(); err != nil {
		return r, err
	}

	if withBones {
		bones, err := model.Bones()
		if err != nil {
			return r, err
		}
		for i, b := range bones.All() {
			r.Bones = append(r.Bones, boneReport{Index: i, Parent: b.ParentBone, Flags: uint32(b.Flags), Pivot: b.Pivot})
		}
	}

	eval, err := skeleton.NewEvaluator(model)
	if err != nil {
		return r, err
	}
	atts, err := model.Attachments()
	if err != nil {
		return r, err
	}
	lookup, err := model.AttachmentLookup()
	if err != nil {
		return r, err
	}
	r.Attachments = make([]attachmentReport, 0, atts.Len())
	for i, a := range atts.All() {
		id := m2.AttachmentID(a.ID)
		ar := attachmentReport{ID: a.ID, Name: id.String(), Bone: a.Bone, Position: a.Position}
		if uint64(id) < uint64(lookup.Len()) {
			slot, err := lookup.At(int(id))
			if err != nil {
				return r, err
			}
			ar.Mapped = int(slot) == i
		}
		if m, err := eval.BoneTransform(int(a.Bone)); err != nil {
			ar.Error = err.Error()
		} else {
			ar.World = geo.Translate(m, a.Position).Col(3).Vec3()
		}
		r.Attachments = append(r.Attachments, ar)
	}
	return r, nil
}

func writeModelReport(w io.Writer, r modelReport) error {
	_, _ = fmt.Fprintf(w, "path:      %s\n", r.Path)
	_, _ = fmt.Fprintf(w, "name:      %s\n", r.Name)
	_, _ = fmt.Fprintf(w, "version:   %d (chunked: %v)\n", r.Version, r.Chunked)
	_, _ = fmt.Fprintf(w, "digest:    %s\n", r.Digest)
	_, _ = fmt.Fprintf(w, "sequences: %d\n", r.Sequences)
	for _, tex := range r.Textures {
		_, _ = fmt.Fprintf(w, "texture:   %s\n", tex)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(r.Bones) > 0 {
		_, _ = fmt.Fprintln(tw, "\nBONE\tPARENT\tFLAGS\tPIVOT")
		for _, b := range r.Bones {
			_, _ = fmt.Fprintf(tw, "%d\t%d\t%#x\t%v\n", b.Index, b.Parent, b.Flags, b.Pivot)
		}
	}
	_, _ = fmt.Fprintln(tw, "\nATTACHMENT\tID\tBONE\tPOSITION\tWORLD\tLOOKUP")
	for _, a := range r.Attachments {
		world := fmt.Sprint(a.World)
		if a.Error != "" {
			world = "error: " + a.Error
		}
		mapped := "-"
		if a.Mapped {
			mapped = "yes"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%v\t%s\t%s\n", a.Name, a.ID, a.Bone, a.Position, world, mapped)
	}
	return tw.Flush()
}
