package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/altairemu/dcdd"
	"github.com/altairemu/dcdd/controller"
	"github.com/altairemu/dcdd/disks"
	"github.com/altairemu/dcdd/image"
)

func main() {
	app := cli.App{
		Name:  "altair-dcdd",
		Usage: "Inspect and exercise Altair 8800 (88-DCDD) disk images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "Log level (trace, debug, info, warn, error)",
			},
		},
		Before: initLogging,
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "Show the geometry of an image file",
				Action:    imageInfo,
				ArgsUsage: "IMAGE",
			},
			{
				Name:      "dump",
				Usage:     "Hex-dump one sector, read through the controller port surface",
				Action:    dumpSector,
				ArgsUsage: "IMAGE TRACK SECTOR",
			},
			{
				Name:   "geometries",
				Usage:  "List the known Altair floppy media",
				Action: listGeometries,
			},
			{
				Name:      "verify",
				Usage:     "Sweep every sector of an image and report read failures",
				Action:    verifyImage,
				ArgsUsage: "IMAGE",
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("fatal error")
	}
}

func initLogging(context *cli.Context) error {
	level, err := zerolog.ParseLevel(context.String("log-level"))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.
		New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().
		Logger()
	return nil
}

func imageInfo(context *cli.Context) error {
	if context.NArg() != 1 {
		return fmt.Errorf("expected exactly one argument, an image file")
	}

	img, err := image.Open(context.Args().Get(0))
	if err != nil {
		return err
	}
	defer img.Close()

	size := int64(img.Size())
	fmt.Printf("Size:          %d bytes\n", size)
	fmt.Printf("Whole sectors: %d\n", size/dcdd.SectorSize)
	fmt.Printf("Whole tracks:  %d\n", size/dcdd.TrackSize)

	matches := disks.IdentifyBySize(size)
	if len(matches) == 0 {
		fmt.Println("Medium:        unknown (no catalog entry matches this size)")
		return nil
	}
	for _, geometry := range matches {
		fmt.Printf("Medium:        %s (%s)\n", geometry.Name, geometry.Slug)
	}
	return nil
}

func dumpSector(context *cli.Context) error {
	if context.NArg() != 3 {
		return fmt.Errorf("expected IMAGE TRACK SECTOR")
	}

	track, err := strconv.Atoi(context.Args().Get(1))
	if err != nil || track < 0 || track >= dcdd.TotalTracks {
		return fmt.Errorf("bad track number %q: not in [0, %d)",
			context.Args().Get(1), dcdd.TotalTracks)
	}
	sector, err := strconv.Atoi(context.Args().Get(2))
	if err != nil || sector < 0 || sector >= dcdd.SectorsPerTrack {
		return fmt.Errorf("bad sector number %q: not in [0, %d)",
			context.Args().Get(2), dcdd.SectorsPerTrack)
	}

	img, err := image.Open(context.Args().Get(0))
	if err != nil {
		return err
	}
	defer img.Close()

	// Read through the port surface rather than straight off the image, so
	// a dump exercises the same path the 8080 sees.
	ctl := controller.New(log.Logger)
	if err := ctl.Load(0, img); err != nil {
		return err
	}
	for i := 0; i < track; i++ {
		ctl.Function(dcdd.ControlStepIn)
	}
	for ctl.SectorPosition()>>1&0x1F != uint8(sector) {
	}

	data := make([]byte, dcdd.SectorSize)
	for i := range data {
		data[i] = ctl.Read()
	}

	for offset := 0; offset < len(data); offset += 16 {
		end := offset + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Printf("%04X  % X\n", track*dcdd.TrackSize+sector*dcdd.SectorSize+offset,
			data[offset:end])
	}
	return nil
}

func listGeometries(context *cli.Context) error {
	for _, geometry := range disks.ListMediaGeometries() {
		fmt.Printf("%-10s %s (%d): %d tracks x %d sectors x %d bytes = %d bytes\n",
			geometry.Slug,
			geometry.Name,
			geometry.FirstYearAvailable,
			geometry.TotalTracks,
			geometry.SectorsPerTrack,
			geometry.BytesPerSector,
			geometry.TotalSizeBytes())
	}
	return nil
}

func verifyImage(context *cli.Context) error {
	if context.NArg() != 1 {
		return fmt.Errorf("expected exactly one argument, an image file")
	}

	img, err := image.Open(context.Args().Get(0))
	if err != nil {
		return err
	}
	defer img.Close()

	var result *multierror.Error
	buffer := make([]byte, dcdd.SectorSize)
	for index := 0; index < dcdd.TotalSectors; index++ {
		offset := uint32(index * dcdd.SectorSize)
		if readErr := img.ReadSector(offset, buffer); readErr != nil {
			result = multierror.Append(result, fmt.Errorf(
				"sector %d (track %d, sector %d): %w",
				index, index/dcdd.SectorsPerTrack, index%dcdd.SectorsPerTrack, readErr))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	fmt.Printf("OK: all %d sectors readable\n", dcdd.TotalSectors)
	return nil
}
